package pipeline

import (
	"errors"
	"testing"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
)

func ptr[T any](v T) *T { return &v }

func word(text string, startMs, endMs int64, speaker string, confidence float64) aai.TranscriptWord {
	w := aai.TranscriptWord{
		Text:       ptr(text),
		Start:      ptr(startMs),
		End:        ptr(endMs),
		Confidence: ptr(confidence),
	}
	if speaker != "" {
		w.Speaker = ptr(speaker)
	}
	return w
}

func TestExtractTranscription(t *testing.T) {
	transcript := &aai.Transcript{
		Text:       ptr("hi there hey"),
		Confidence: ptr(0.93),
		Words: []aai.TranscriptWord{
			word("hi", 0, 500, "A", 0.99),
			word("there", 600, 1000, "A", 0.97),
			word("hey", 1100, 1500, "B", 0.88),
		},
	}

	got, err := extractTranscription(transcript)
	if err != nil {
		t.Fatalf("extractTranscription returned error: %v", err)
	}

	if len(got.Words) != 3 {
		t.Fatalf("got %d words; want 3", len(got.Words))
	}
	if got.Words[0].Start != 0.0 || got.Words[1].Start != 0.6 || got.Words[2].Start != 1.1 {
		t.Errorf("start times = %v %v %v; want ms converted to seconds",
			got.Words[0].Start, got.Words[1].Start, got.Words[2].Start)
	}
	// Provider labels A/B become indexes 0/1 by first appearance
	if got.Words[0].Speaker != 0 || got.Words[1].Speaker != 0 || got.Words[2].Speaker != 1 {
		t.Errorf("speakers = %d %d %d; want 0 0 1",
			got.Words[0].Speaker, got.Words[1].Speaker, got.Words[2].Speaker)
	}
	if got.Text != "hi there hey" {
		t.Errorf("text = %q", got.Text)
	}
}

func TestExtractTranscriptionUnlabeledSpeakers(t *testing.T) {
	transcript := &aai.Transcript{
		Words: []aai.TranscriptWord{
			word("solo", 0, 400, "", 0.9),
			word("voice", 500, 900, "", 0.9),
		},
	}

	got, err := extractTranscription(transcript)
	if err != nil {
		t.Fatalf("extractTranscription returned error: %v", err)
	}
	for i, w := range got.Words {
		if w.Speaker != 0 {
			t.Errorf("word %d speaker = %d; want 0", i, w.Speaker)
		}
	}
}

func TestExtractTranscriptionNoWords(t *testing.T) {
	_, err := extractTranscription(&aai.Transcript{Text: ptr("phantom")})
	if err == nil {
		t.Fatal("expected error for empty word table")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_EMPTY_TRANSCRIPT {
		t.Errorf("error = %v; want EMPTY_TRANSCRIPT", err)
	}
}

func TestClassifySubmitError(t *testing.T) {
	var permErr *backoff.PermanentError

	got := classifySubmitError(errors.New("API error: 401 unauthorized"))
	if !errors.As(got, &permErr) {
		t.Errorf("4xx rejection should be permanent, got %v", got)
	}

	// A transport failure passes through unchanged so backoff retries it
	transient := errors.New("dial tcp: connection refused")
	if got := classifySubmitError(transient); got != transient {
		t.Errorf("transient error should pass through, got %v", got)
	}
}
