package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

// Transcriber produces a diarized word-level transcription from a waveform
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*entities.Transcription, error)
}

// AssemblyAITranscriber transcribes audio through the hosted AssemblyAI
// API with speaker labels enabled
type AssemblyAITranscriber struct {
	client       *aai.Client
	apiKey       string
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
}

// NewAssemblyAITranscriber creates a transcriber from the provider config
func NewAssemblyAITranscriber(client *aai.Client, cfg *config.AssemblyConfig, logger *zap.Logger) *AssemblyAITranscriber {
	pollInterval := 3 * time.Second
	pollTimeout := 10 * time.Minute
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
		if cfg.PollInterval > 0 {
			pollInterval = cfg.PollInterval
		}
		if cfg.PollTimeout > 0 {
			pollTimeout = cfg.PollTimeout
		}
	}
	return &AssemblyAITranscriber{
		client:       client,
		apiKey:       apiKey,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
	}
}

// Transcribe uploads the waveform, submits a transcription job with
// speaker labels and polls until it completes. Missing credentials and
// provider-side rejections are fatal; transport failures during submission
// are retried with bounded exponential backoff.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioPath string) (*entities.Transcription, error) {
	if t.apiKey == "" {
		return nil, apperrors.ErrMissingCredentials.WithDetail("ASSEMBLYAI_API_KEY is not set")
	}

	var transcriptID string
	submitFn := func() error {
		f, err := os.Open(audioPath)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to open waveform: %w", err))
		}
		defer f.Close()

		if t.logger != nil {
			t.logger.Info("📤 Uploading waveform to AssemblyAI",
				zap.String("path", audioPath),
			)
		}

		uploadURL, err := t.client.Upload(ctx, f)
		if err != nil {
			return classifySubmitError(err)
		}

		transcript, err := t.client.Transcripts.SubmitFromURL(ctx, uploadURL, &aai.TranscriptOptionalParams{
			SpeakerLabels: aai.Bool(true),
		})
		if err != nil {
			return classifySubmitError(err)
		}

		if transcript.ID == nil {
			return backoff.Permanent(fmt.Errorf("provider returned no transcript id"))
		}
		transcriptID = *transcript.ID
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, apperrors.ErrTranscriptionFailed.WithRaw(err)
	}

	if t.logger != nil {
		t.logger.Info("🎙️ Transcription submitted",
			zap.String("transcript_id", transcriptID),
		)
	}

	return t.poll(ctx, transcriptID)
}

// poll waits for the transcript to reach a terminal status
func (t *AssemblyAITranscriber) poll(ctx context.Context, transcriptID string) (*entities.Transcription, error) {
	deadline := time.Now().Add(t.pollTimeout)
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, apperrors.Transient(fmt.Errorf("transcription polling cancelled: %w", ctx.Err()))
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			return nil, apperrors.Transient(fmt.Errorf("transcription timed out after %s", t.pollTimeout))
		}

		transcript, err := t.client.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			// Transient poll failures just mean we try again next tick
			if t.logger != nil {
				t.logger.Warn("⚠️ Failed to poll transcript status",
					zap.String("transcript_id", transcriptID),
					zap.Error(err),
				)
			}
			continue
		}

		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			return extractTranscription(&transcript)
		case aai.TranscriptStatusError:
			msg := "provider reported transcription error"
			if transcript.Error != nil {
				msg = *transcript.Error
			}
			return nil, apperrors.ErrTranscriptionFailed.WithDetail(msg)
		case aai.TranscriptStatusQueued, aai.TranscriptStatusProcessing:
			continue
		default:
			if t.logger != nil {
				t.logger.Warn("⚠️ Unknown transcript status",
					zap.String("transcript_id", transcriptID),
					zap.String("status", string(transcript.Status)),
				)
			}
		}
	}
}

// extractTranscription converts the provider response into the normalized
// word table. Speaker labels are remapped to zero-based indexes in order
// of first appearance; unlabeled words belong to speaker 0.
func extractTranscription(transcript *aai.Transcript) (*entities.Transcription, error) {
	if len(transcript.Words) == 0 {
		return nil, apperrors.ErrEmptyTranscript
	}

	speakerIndex := map[string]int{}
	words := make([]entities.Word, 0, len(transcript.Words))
	for _, w := range transcript.Words {
		word := entities.Word{}
		if w.Text != nil {
			word.Text = *w.Text
		}
		if w.Start != nil {
			word.Start = float64(*w.Start) / 1000.0 // ms to seconds
		}
		if w.End != nil {
			word.End = float64(*w.End) / 1000.0
		}
		if w.Confidence != nil {
			word.Confidence = *w.Confidence
		}
		if w.Speaker != nil && *w.Speaker != "" {
			idx, seen := speakerIndex[*w.Speaker]
			if !seen {
				idx = len(speakerIndex)
				speakerIndex[*w.Speaker] = idx
			}
			word.Speaker = idx
		}
		words = append(words, word)
	}

	result := &entities.Transcription{Words: words}
	if transcript.Text != nil {
		result.Text = *transcript.Text
	}
	if transcript.Confidence != nil {
		result.Confidence = *transcript.Confidence
	}
	if transcript.AudioDuration != nil {
		result.AudioSecs = *transcript.AudioDuration
	}
	return result, nil
}

// classifySubmitError separates provider rejections, which are permanent,
// from transport failures, which are worth retrying
func classifySubmitError(err error) error {
	if jobcontext.IsNonRetryableError(err) {
		return backoff.Permanent(err)
	}
	return err
}
