package jobdriver

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePort struct {
	running map[string]bool
	jobs    map[string]*Job
	lines   map[string][]string
}

func newFakePort() *fakePort {
	return &fakePort{running: map[string]bool{}, jobs: map[string]*Job{}, lines: map[string][]string{}}
}

func (f *fakePort) TryStart(ctx context.Context, job *Job) error {
	if f.running[job.Name] {
		return ErrJobAlreadyRunning
	}
	f.running[job.Name] = true
	f.jobs[job.ID] = job
	return nil
}

func (f *fakePort) AppendMessage(ctx context.Context, jobID, line string) error {
	f.lines[jobID] = append(f.lines[jobID], line)
	return nil
}

func (f *fakePort) Finish(ctx context.Context, jobID string, status Status, at time.Time) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return errors.New("unknown job")
	}
	job.Status = status
	job.FinishedAt = at
	f.running[job.Name] = false
	return nil
}

func TestDriverStartRejectsSecondConcurrentRun(t *testing.T) {
	port := newFakePort()
	d := New(port)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	job, err := d.Start(context.Background(), "generate", 30*time.Minute, "cli", now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job.Status != StatusRunning {
		t.Fatalf("status = %v, want RUNNING", job.Status)
	}

	_, err = d.Start(context.Background(), "generate", 30*time.Minute, "cli", now)
	if !errors.Is(err, ErrJobAlreadyRunning) {
		t.Fatalf("err = %v, want ErrJobAlreadyRunning", err)
	}
}

func TestDriverFinishTransitionsStatus(t *testing.T) {
	port := newFakePort()
	d := New(port)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	job, err := d.Start(context.Background(), "generate", 30*time.Minute, "cli", now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Log(context.Background(), job, "processed %d combos", 5); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := d.Finish(context.Background(), job, StatusSuccess, now.Add(time.Minute)); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if job, ok := port.jobs[job.ID]; !ok || job.Status != StatusSuccess {
		t.Fatalf("job status = %+v, want SUCCESS", job)
	}
	if len(port.lines[job.ID]) != 1 || port.lines[job.ID][0] != "processed 5 combos" {
		t.Fatalf("lines = %v", port.lines[job.ID])
	}

	again, err := d.Start(context.Background(), "generate", 30*time.Minute, "cli", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Start after finish: %v", err)
	}
	if again.ID == job.ID {
		t.Fatal("expected a fresh job id for the second run")
	}
}

func TestDriverFinishRejectsNonTerminalStatus(t *testing.T) {
	port := newFakePort()
	d := New(port)
	now := time.Now()
	job, _ := d.Start(context.Background(), "generate", time.Minute, "cli", now)
	if err := d.Finish(context.Background(), job, StatusRunning, now); err == nil {
		t.Fatal("expected an error finishing with a non-terminal status")
	}
}

func TestCancelFlag(t *testing.T) {
	flag := NewCancelFlag()
	if flag.Cancelled() {
		t.Fatal("flag should start uncancelled")
	}
	flag.Cancel()
	if !flag.Cancelled() {
		t.Fatal("flag should report cancelled after Cancel")
	}
	select {
	case <-flag.Done():
	default:
		t.Fatal("Done channel should be closed after Cancel")
	}
	flag.Cancel() // idempotent, must not panic
}
