package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
)

// maxDiagnosticLen caps how much ffmpeg stderr is kept on a failed job.
const maxDiagnosticLen = 4096

// FFmpeg converts media files through the ffmpeg binary.
type FFmpeg struct {
	binary  string
	timeout time.Duration
}

// NewFFmpeg creates a transcoder. An empty binary falls back to "ffmpeg"
// on PATH.
func NewFFmpeg(binary string, timeout time.Duration) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary, timeout: timeout}
}

// Transcode converts inputPath into outputPath using the catalog entry for
// formatID, overwriting any existing output. It reports success plus a
// diagnostic; a timeout produces a diagnostic distinct from an encoder
// failure. Launch errors are reported the same way, never panicked.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath, formatID string) (bool, string) {
	format, ok := LookupFormat(formatID)
	if !ok {
		return false, fmt.Sprintf("unsupported output format: %s", formatID)
	}

	args := []string{
		"-i", inputPath,
		"-c:v", format.VideoCodec,
		"-c:a", format.AudioCodec,
		"-y",
	}
	args = append(args, format.ExtraArgs...)
	args = append(args, outputPath)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := commandContext(ctx, f.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return false, fmt.Sprintf("transcode timed out after %s", f.timeout)
	}
	if err != nil {
		if diag := strings.TrimSpace(stderr.String()); diag != "" {
			return false, truncateDiagnostic(diag)
		}
		return false, err.Error()
	}
	return true, ""
}

// truncateDiagnostic keeps the tail of the output, which is where ffmpeg
// reports the actual error.
func truncateDiagnostic(diag string) string {
	if len(diag) <= maxDiagnosticLen {
		return diag
	}
	return diag[len(diag)-maxDiagnosticLen:]
}
