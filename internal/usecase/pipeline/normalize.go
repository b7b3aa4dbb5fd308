package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Normalizer transcodes arbitrary input media into a canonical waveform
// for speech processing. The returned cleanup function removes the
// temporary file and must be called on every exit path.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (wavPath string, cleanup func(), err error)
}

// FFmpegNormalizer shells out to ffmpeg to produce mono 16 kHz 16-bit PCM
type FFmpegNormalizer struct {
	binPath string
	timeout time.Duration
	logger  *zap.Logger
}

// NewFFmpegNormalizer creates a normalizer using the given ffmpeg binary
func NewFFmpegNormalizer(binPath string, timeout time.Duration, logger *zap.Logger) *FFmpegNormalizer {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &FFmpegNormalizer{binPath: binPath, timeout: timeout, logger: logger}
}

// Normalize transcodes the input into a temporary wav file
func (n *FFmpegNormalizer) Normalize(ctx context.Context, inputPath string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "meeting-audio-*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	wavPath := tmp.Name()
	tmp.Close()

	cleanup := func() {
		if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
			if n.logger != nil {
				n.logger.Warn("⚠️ Failed to remove temp waveform",
					zap.String("path", wavPath),
					zap.Error(err),
				)
			}
		}
	}

	cmdCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, n.binPath,
		"-y",
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		wavPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		// ffmpeg writes diagnostics to stderr; keep the tail for context
		detail := string(output)
		if len(detail) > 500 {
			detail = detail[len(detail)-500:]
		}
		return "", nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(detail))
	}

	if n.logger != nil {
		n.logger.Info("🎧 Media normalized",
			zap.String("input", inputPath),
			zap.String("output", wavPath),
		)
	}
	return wavPath, cleanup, nil
}
