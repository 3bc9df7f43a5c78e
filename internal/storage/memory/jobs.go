package memory

import (
	"context"
	"strings"
	"time"

	"github.com/commanderspellbook/variantengine/internal/jobdriver"
)

// jobRecord is the store's view of a job.Driver lease; jobs live in their
// own map guarded by the same mutex as the catalog.
type jobRecord struct {
	job     *jobdriver.Job
	running bool
}

// jobs is declared as a method set on Store via a side table so a single
// Store value satisfies jobdriver.Port without complicating the catalog
// maps Seed/CommitVariants already manage.
type jobTable = map[string]*jobRecord

func (s *Store) jobsTable() jobTable {
	if s.jobs == nil {
		s.jobs = jobTable{}
	}
	return s.jobs
}

// TryStart registers job as RUNNING, rejecting a second concurrent run
// under the same name while an earlier lease has not expired.
func (s *Store) TryStart(ctx context.Context, job *jobdriver.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.jobsTable()
	for _, rec := range table {
		if rec.running && rec.job.Name == job.Name && job.StartedAt.Before(rec.job.LeaseUntil) {
			return jobdriver.ErrJobAlreadyRunning
		}
	}
	cp := *job
	table[job.ID] = &jobRecord{job: &cp, running: true}
	return nil
}

func (s *Store) AppendMessage(ctx context.Context, jobID, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobsTable()[jobID]
	if !ok {
		return jobdriver.ErrJobAlreadyRunning
	}
	if rec.job.Message != "" {
		rec.job.Message += "\n"
	}
	rec.job.Message += strings.TrimRight(line, "\n")
	return nil
}

func (s *Store) Finish(ctx context.Context, jobID string, status jobdriver.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobsTable()[jobID]
	if !ok {
		return jobdriver.ErrJobAlreadyRunning
	}
	rec.job.Status = status
	rec.job.FinishedAt = at
	rec.running = false
	return nil
}
