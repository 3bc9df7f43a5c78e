package memory

import (
	"context"
	"testing"
	"time"

	"github.com/commanderspellbook/variantengine/internal/jobdriver"
)

func TestStoreSatisfiesJobPort(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	job := &jobdriver.Job{ID: "job-1", Name: "generate", Status: jobdriver.StatusRunning, StartedAt: now, LeaseUntil: now.Add(time.Hour)}
	if err := s.TryStart(ctx, job); err != nil {
		t.Fatalf("TryStart: %v", err)
	}

	second := &jobdriver.Job{ID: "job-2", Name: "generate", Status: jobdriver.StatusRunning, StartedAt: now.Add(time.Minute), LeaseUntil: now.Add(time.Hour)}
	if err := s.TryStart(ctx, second); err == nil {
		t.Fatal("expected a conflict for a second concurrent run of the same name")
	}

	if err := s.AppendMessage(ctx, job.ID, "halfway done"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := s.Finish(ctx, job.ID, jobdriver.StatusSuccess, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	third := &jobdriver.Job{ID: "job-3", Name: "generate", Status: jobdriver.StatusRunning, StartedAt: now.Add(3 * time.Hour), LeaseUntil: now.Add(4 * time.Hour)}
	if err := s.TryStart(ctx, third); err != nil {
		t.Fatalf("TryStart after finish: %v", err)
	}
}
