package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mesyatsya/converter/internal/model"
	"github.com/mesyatsya/converter/internal/registry"
)

func TestPoolProcessesQueuedJobs(t *testing.T) {
	reg := registry.New()
	dir := t.TempDir()

	runner := NewRunner(reg, &stubTranscoder{fn: func(in, out, format string) (bool, string) {
		if err := os.WriteFile(out, []byte("converted"), 0o644); err != nil {
			return false, err.Error()
		}
		return true, ""
	}}, nil)
	pool := NewPool(2, 16, runner)
	defer pool.Shutdown()

	const n = 8
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("task-%d", i)
		reg.Create(model.Job{
			TaskID:     id,
			InputPath:  filepath.Join(dir, id+".mov"),
			OutputPath: filepath.Join(dir, id+".mp4"),
			Format:     "mp4",
		})
		pool.Enqueue(id)
	}

	deadline := time.After(5 * time.Second)
	for {
		done := 0
		for i := 0; i < n; i++ {
			job, ok := reg.Get(fmt.Sprintf("task-%d", i))
			if ok && job.Status.Terminal() {
				done++
			}
		}
		if done == n {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("only %d of %d jobs reached a terminal state", done, n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	for i := 0; i < n; i++ {
		job, _ := reg.Get(fmt.Sprintf("task-%d", i))
		if job.Status != model.JobStatusCompleted {
			t.Errorf("job %d finished as %s (%q)", i, job.Status, job.Error)
		}
	}
}

func TestPoolShutdownWaitsForWorkers(t *testing.T) {
	reg := registry.New()
	runner := NewRunner(reg, &stubTranscoder{fn: func(in, out, format string) (bool, string) {
		return false, "no such job"
	}}, nil)

	pool := NewPool(0, 0, runner) // clamped to minimums
	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return")
	}
}

func TestPoolEnqueueFullQueueDoesNotBlock(t *testing.T) {
	reg := registry.New()
	started := make(chan string, 4)
	release := make(chan struct{})
	runner := NewRunner(reg, &stubTranscoder{fn: func(in, out, format string) (bool, string) {
		started <- in
		<-release
		return false, "stalled"
	}}, nil)
	pool := NewPool(1, 1, runner)
	defer func() {
		close(release)
		pool.Shutdown()
	}()

	for _, id := range []string{"busy", "queued", "overflow"} {
		reg.Create(model.Job{TaskID: id, InputPath: id, Format: "mp4"})
	}

	pool.Enqueue("busy")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first job")
	}
	pool.Enqueue("queued") // fills the single buffer slot

	done := make(chan struct{})
	go func() {
		pool.Enqueue("overflow")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Enqueue blocked on a full queue")
	}

	job, ok := reg.Get("overflow")
	if !ok {
		t.Fatal("overflow job missing from registry")
	}
	if job.Status != model.JobStatusError {
		t.Fatalf("overflow job status = %s, want %s", job.Status, model.JobStatusError)
	}
	if job.Error != "conversion queue is full" {
		t.Errorf("overflow job error = %q", job.Error)
	}
}

func TestPoolEnqueueAfterShutdown(t *testing.T) {
	reg := registry.New()
	runner := NewRunner(reg, &stubTranscoder{fn: func(in, out, format string) (bool, string) {
		return true, ""
	}}, nil)
	pool := NewPool(1, 1, runner)
	pool.Shutdown()
	pool.Shutdown() // second call is a no-op

	reg.Create(model.Job{TaskID: "late", Format: "mp4"})
	pool.Enqueue("late") // must not panic on the closed queue

	job, ok := reg.Get("late")
	if !ok {
		t.Fatal("late job missing from registry")
	}
	if job.Status != model.JobStatusError {
		t.Fatalf("late job status = %s, want %s", job.Status, model.JobStatusError)
	}
	if job.Error != "converter is shutting down" {
		t.Errorf("late job error = %q", job.Error)
	}
}

var _ Transcoder = (*stubTranscoder)(nil)
