package media

import (
	"context"
	"encoding/json"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mesyatsya/converter/internal/model"
)

var commandContext = exec.CommandContext

// probeResult mirrors the JSON document emitted by ffprobe.
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FrameRate string `json:"r_frame_rate"`
}

type probeFormat struct {
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// FFprobe inspects media files through the ffprobe binary.
type FFprobe struct {
	binary  string
	timeout time.Duration
}

// NewFFprobe creates an inspector. An empty binary falls back to "ffprobe"
// on PATH.
func NewFFprobe(binary string, timeout time.Duration) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary, timeout: timeout}
}

// Probe runs ffprobe against path and returns the parsed metadata. Metadata
// is best-effort: any failure (launch error, non-zero exit, timeout, bad
// JSON) returns nil so the upload path is never blocked on inspection.
func (p *FFprobe) Probe(ctx context.Context, path string) *model.MediaInfo {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := commandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		log.Printf("ffprobe failed for %s: %v", path, err)
		return nil
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		log.Printf("ffprobe output unparseable for %s: %v", path, err)
		return nil
	}
	return buildMediaInfo(result)
}

// buildMediaInfo normalizes a probe result, taking the first video and first
// audio stream when several are present.
func buildMediaInfo(result probeResult) *model.MediaInfo {
	info := &model.MediaInfo{
		Duration:   parseFloat(result.Format.Duration),
		Size:       parseInt(result.Format.Size),
		BitRate:    parseInt(result.Format.BitRate),
		FormatName: result.Format.FormatName,
	}
	if info.FormatName == "" {
		info.FormatName = "unknown"
	}

	for _, stream := range result.Streams {
		switch stream.CodecType {
		case "video":
			if info.VideoCodec != "" {
				continue
			}
			info.VideoCodec = stream.CodecName
			info.Width = stream.Width
			info.Height = stream.Height
			info.FrameRate = parseFrameRate(stream.FrameRate)
		case "audio":
			if info.AudioCodec != "" {
				continue
			}
			info.AudioCodec = stream.CodecName
		}
	}
	return info
}

// parseFrameRate accepts either a plain decimal or an ffprobe
// "numerator/denominator" rational. Unparseable input and a zero denominator
// both yield 0, meaning unknown.
func parseFrameRate(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if num, den, ok := strings.Cut(value, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return rate
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseInt(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
