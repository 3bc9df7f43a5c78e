// Package jobdriver implements the single-writer job lifecycle described
// in spec §4.H: register-or-reject mutual exclusion via a time-bounded
// lease, monotonic status transitions, and cooperative cancellation
// between the engine's components.
package jobdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commanderspellbook/variantengine/internal/idgen"
)

// Status is a job's lifecycle state. Transitions are monotonic:
// PENDING -> RUNNING -> {SUCCESS, FAILURE}.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// ErrJobAlreadyRunning is a soft error (spec §7): surfaced to the caller,
// not an engine failure.
var ErrJobAlreadyRunning = errors.New("job already running")

// Job is one generation run's bookkeeping record.
type Job struct {
	ID         string
	Name       string
	Status     Status
	StartedBy  string
	LeaseUntil time.Time
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Port is the persistence surface the driver needs (spec §6's job port).
// Backends (storage.Storage implementations) satisfy this alongside their
// snapshot/commit duties.
type Port interface {
	// TryStart attempts to register name as RUNNING under a fresh lease; it
	// returns ErrJobAlreadyRunning if an unexpired lease already exists for
	// the same name.
	TryStart(ctx context.Context, job *Job) error
	AppendMessage(ctx context.Context, jobID, line string) error
	Finish(ctx context.Context, jobID string, status Status, at time.Time) error
}

// Driver drives one job's lifecycle against a Port.
type Driver struct {
	port Port
}

// New constructs a Driver over the given job persistence port.
func New(port Port) *Driver {
	return &Driver{port: port}
}

// Start attempts to register a new job named name. It returns
// ErrJobAlreadyRunning, not an error, when one is already running under an
// unexpired lease for the same name — that is a normal, expected outcome
// the caller decides how to handle (spec §7).
func (d *Driver) Start(ctx context.Context, name string, lease time.Duration, startedBy string, now time.Time) (*Job, error) {
	job := &Job{
		ID:         idgen.GenerateHashID("job", name, "", startedBy, now, 8, 0),
		Name:       name,
		Status:     StatusRunning,
		StartedBy:  startedBy,
		LeaseUntil: now.Add(lease),
		StartedAt:  now,
	}
	if err := d.port.TryStart(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Log appends one progress line. Per spec §4.G this is written in its own
// short transaction so it remains visible while a long commit is pending.
func (d *Driver) Log(ctx context.Context, job *Job, format string, args ...any) error {
	line := fmt.Sprintf(format, args...)
	return d.port.AppendMessage(ctx, job.ID, line)
}

// Finish transitions job to a terminal status.
func (d *Driver) Finish(ctx context.Context, job *Job, status Status, at time.Time) error {
	if status != StatusSuccess && status != StatusFailure {
		return fmt.Errorf("jobdriver: invalid terminal status %q", status)
	}
	return d.port.Finish(ctx, job.ID, status, at)
}

// CancelFlag is the cooperative cancellation switch spec §5 describes: the
// driver owns it, and engine components poll it between root-combo
// iterations and before the final commit.
type CancelFlag struct {
	ch chan struct{}
}

// NewCancelFlag returns a flag that is not yet set.
func NewCancelFlag() *CancelFlag {
	return &CancelFlag{ch: make(chan struct{})}
}

// Cancel sets the flag. Safe to call more than once.
func (f *CancelFlag) Cancel() {
	select {
	case <-f.ch:
	default:
		close(f.ch)
	}
}

// Cancelled reports whether Cancel has been called.
func (f *CancelFlag) Cancelled() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once Cancel is called, for
// select-based polling alongside a context.Context.
func (f *CancelFlag) Done() <-chan struct{} {
	return f.ch
}
