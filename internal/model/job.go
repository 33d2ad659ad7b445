package model

import "time"

// Job status
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// Terminal reports whether no further status transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// Job represents one conversion tracked by the registry. The task ID is
// minted server-side and is the only key used to address the job; input and
// output paths are derived from it, never from the uploaded filename.
type Job struct {
	TaskID           string     `json:"taskId"`
	InputPath        string     `json:"inputPath"`
	OutputPath       string     `json:"outputPath"`
	OutputFilename   string     `json:"outputFilename"`
	OriginalFilename string     `json:"originalFilename"`
	Format           string     `json:"format"`
	MediaInfo        *MediaInfo `json:"mediaInfo,omitempty"`
	Status           JobStatus  `json:"status"`
	Error            string     `json:"error,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}
