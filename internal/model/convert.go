package model

import "time"

// ConvertRequest carries the non-file fields of the upload form.
type ConvertRequest struct {
	Format string `json:"format" validate:"required,oneof=mp4 webm avi mkv"`
}

// ConvertStartResponse is returned when an upload is accepted.
type ConvertStartResponse struct {
	TaskID    string     `json:"taskId"`
	Status    JobStatus  `json:"status"`
	MediaInfo *MediaInfo `json:"mediaInfo,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ConvertStatusResponse is the polling payload for a job.
type ConvertStatusResponse struct {
	Status JobStatus `json:"status"`
	Error  *string   `json:"error"`
}

// ConvertJobResponse is the full view of a job, used by the processing and
// result pages.
type ConvertJobResponse struct {
	TaskID           string     `json:"taskId"`
	Status           JobStatus  `json:"status"`
	Error            *string    `json:"error"`
	OriginalFilename string     `json:"originalFilename"`
	Format           string     `json:"format"`
	DownloadFilename string     `json:"downloadFilename"`
	MediaInfo        *MediaInfo `json:"mediaInfo,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// FormatInfo describes one supported output format.
type FormatInfo struct {
	ID         string `json:"id"`
	Ext        string `json:"ext"`
	VideoCodec string `json:"videoCodec"`
	AudioCodec string `json:"audioCodec"`
}

// CleanupResponse acknowledges removal of a job and its files.
type CleanupResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"taskId"`
}
