package pipeline

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// FormatTurns collapses a word-level stream into one line per maximal
// contiguous run of the same speaker:
//
//	[MM:SS] SPEAKER_0: hi there
//
// The timecode is the start of the first word in the turn. Empty input
// yields an empty string.
func FormatTurns(words []entities.Word) string {
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	turnSpeaker := words[0].Speaker
	turnStart := words[0].Start
	turnWords := []string{}

	flush := func() {
		if len(turnWords) == 0 {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		minutes := int(turnStart) / 60
		seconds := int(turnStart) % 60
		sb.WriteString(fmt.Sprintf("[%02d:%02d] SPEAKER_%d: %s",
			minutes, seconds, turnSpeaker, strings.Join(turnWords, " ")))
	}

	for _, w := range words {
		if w.Speaker != turnSpeaker {
			flush()
			turnSpeaker = w.Speaker
			turnStart = w.Start
			turnWords = turnWords[:0]
		}
		if text := strings.TrimSpace(w.Text); text != "" {
			turnWords = append(turnWords, text)
		}
	}
	flush()

	return sb.String()
}
