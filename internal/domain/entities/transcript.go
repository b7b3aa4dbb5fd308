package entities

// Word is a single diarized token emitted by the speech-to-text provider.
// Start and End are seconds from the beginning of the recording. Speaker is
// a zero-based index assigned in order of first appearance.
type Word struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Speaker    int     `json:"speaker"`
	Confidence float64 `json:"confidence"`
}

// Transcription is the full output of the speech-to-text stage.
type Transcription struct {
	Words      []Word  `json:"words"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	AudioSecs  float64 `json:"audio_secs"`
}
