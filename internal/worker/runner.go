package worker

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mesyatsya/converter/internal/model"
	"github.com/mesyatsya/converter/internal/registry"
)

// Transcoder converts an input file into an output file per the requested
// format and reports success plus a diagnostic.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath, formatID string) (bool, string)
}

// Notifier is told about terminal job transitions.
type Notifier interface {
	JobStateChanged(taskID string, status model.JobStatus, errMsg string)
}

// Runner executes one conversion job end to end: run the transcoder, verify
// the output landed on disk, then record the terminal state.
type Runner struct {
	registry   *registry.Registry
	transcoder Transcoder
	notifier   Notifier
}

// NewRunner wires a runner. notifier may be nil.
func NewRunner(reg *registry.Registry, transcoder Transcoder, notifier Notifier) *Runner {
	return &Runner{
		registry:   reg,
		transcoder: transcoder,
		notifier:   notifier,
	}
}

// Process runs the conversion for taskID. The job may have been deleted by a
// concurrent cleanup at any point; every registry update is a no-op then.
// Nothing escapes this method: panics below it are recorded as the job's
// error state.
func (r *Runner) Process(taskID string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("conversion %s panicked: %v", taskID, rec)
			r.markError(taskID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	job, ok := r.registry.Get(taskID)
	if !ok {
		return
	}

	log.Printf("starting conversion %s (%s -> %s)", taskID, job.OriginalFilename, job.Format)
	ok, diagnostic := r.transcoder.Transcode(context.Background(), job.InputPath, job.OutputPath, job.Format)

	if !ok {
		r.markError(taskID, diagnostic)
		return
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		r.markError(taskID, fmt.Sprintf("output file missing after conversion: %v", err))
		return
	}

	if r.registry.MarkCompleted(taskID) {
		log.Printf("conversion %s completed", taskID)
		r.notify(taskID, model.JobStatusCompleted, "")
	}
}

func (r *Runner) markError(taskID, message string) {
	if message == "" {
		message = "unknown conversion error"
	}
	if r.registry.MarkError(taskID, message) {
		log.Printf("conversion %s failed: %s", taskID, message)
		r.notify(taskID, model.JobStatusError, message)
	}
}

func (r *Runner) notify(taskID string, status model.JobStatus, errMsg string) {
	if r.notifier == nil {
		return
	}
	r.notifier.JobStateChanged(taskID, status, errMsg)
}
