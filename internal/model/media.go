package model

// MediaInfo holds the probed properties of an uploaded file. It is produced
// once at upload time and never mutated afterwards. Zero values mean the
// probed container simply lacks the corresponding track or field.
type MediaInfo struct {
	Duration   float64 `json:"duration"`
	Size       int64   `json:"size"`
	BitRate    int64   `json:"bitrate"`
	FormatName string  `json:"format"`
	VideoCodec string  `json:"videoCodec,omitempty"`
	AudioCodec string  `json:"audioCodec,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	FrameRate  float64 `json:"fps,omitempty"`
}
