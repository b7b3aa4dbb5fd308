package pipeline

import (
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestFormatTurnsSpeakerChange(t *testing.T) {
	words := []entities.Word{
		{Start: 0.0, End: 0.5, Text: "hi", Speaker: 0},
		{Start: 0.6, End: 1.0, Text: "there", Speaker: 0},
		{Start: 1.1, End: 1.5, Text: "hey", Speaker: 1},
	}

	got := FormatTurns(words)
	want := "[00:00] SPEAKER_0: hi there\n[00:01] SPEAKER_1: hey"
	if got != want {
		t.Errorf("FormatTurns = %q; want %q", got, want)
	}
}

func TestFormatTurnsEmpty(t *testing.T) {
	if got := FormatTurns(nil); got != "" {
		t.Errorf("FormatTurns(nil) = %q; want empty", got)
	}
	if got := FormatTurns([]entities.Word{}); got != "" {
		t.Errorf("FormatTurns(empty) = %q; want empty", got)
	}
}

func TestFormatTurnsSingleSpeaker(t *testing.T) {
	words := []entities.Word{
		{Start: 65.2, Text: "all", Speaker: 0},
		{Start: 65.8, Text: "one", Speaker: 0},
		{Start: 66.1, Text: "turn", Speaker: 0},
	}

	got := FormatTurns(words)
	want := "[01:05] SPEAKER_0: all one turn"
	if got != want {
		t.Errorf("FormatTurns = %q; want %q", got, want)
	}
}

func TestFormatTurnsSpeakerReturns(t *testing.T) {
	words := []entities.Word{
		{Start: 0.0, Text: "a", Speaker: 0},
		{Start: 1.0, Text: "b", Speaker: 1},
		{Start: 2.0, Text: "c", Speaker: 0},
	}

	got := FormatTurns(words)
	want := "[00:00] SPEAKER_0: a\n[00:01] SPEAKER_1: b\n[00:02] SPEAKER_0: c"
	if got != want {
		t.Errorf("FormatTurns = %q; want %q", got, want)
	}
}

func TestFormatTurnsSkipsBlankWords(t *testing.T) {
	words := []entities.Word{
		{Start: 0.0, Text: "hello", Speaker: 0},
		{Start: 0.5, Text: "  ", Speaker: 0},
		{Start: 1.0, Text: "world", Speaker: 0},
	}

	got := FormatTurns(words)
	want := "[00:00] SPEAKER_0: hello world"
	if got != want {
		t.Errorf("FormatTurns = %q; want %q", got, want)
	}
}
