//go:build cgo

package dolt

import (
	"context"
	"time"

	"github.com/commanderspellbook/variantengine/internal/jobdriver"
)

// TryStart registers job as RUNNING, rejecting a second concurrent run
// under the same name while an earlier lease has not expired. The
// check-then-insert is done inside a transaction so two drivers racing
// against the same database observe a consistent winner.
func (b *Backend) TryStart(ctx context.Context, job *jobdriver.Job) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapQuery("TryStart.begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `SELECT lease_until FROM jobs WHERE name = ? AND status = ?`, job.Name, string(jobdriver.StatusRunning))
	if err != nil {
		return wrapQuery("TryStart.query", err)
	}
	var conflict bool
	for rows.Next() {
		var leaseUntil int64
		if err := rows.Scan(&leaseUntil); err != nil {
			rows.Close()
			return wrapQuery("TryStart.scan", err)
		}
		if job.StartedAt.Before(time.Unix(0, leaseUntil)) {
			conflict = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return wrapQuery("TryStart.rows", err)
	}
	if conflict {
		err = jobdriver.ErrJobAlreadyRunning
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO jobs (id, name, status, lease_until, started_by, message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		job.ID, job.Name, string(job.Status), job.LeaseUntil.UnixNano(), job.StartedBy, job.Message, job.StartedAt.UnixNano())
	if err != nil {
		return wrapQuery("TryStart.insert", err)
	}
	if err = tx.Commit(); err != nil {
		return wrapQuery("TryStart.commit", err)
	}
	return nil
}

// AppendMessage writes one progress line in its own short transaction, per
// spec §4.G, so it is visible while a long-running commit is still open.
func (b *Backend) AppendMessage(ctx context.Context, jobID, line string) error {
	_, err := b.db.ExecContext(ctx, `UPDATE jobs SET message = CONCAT(message, ?, ?) WHERE id = ?`, "\n", line, jobID)
	return wrapQuery("AppendMessage", err)
}

func (b *Backend) Finish(ctx context.Context, jobID string, status jobdriver.Status, at time.Time) error {
	_, err := b.db.ExecContext(ctx, `UPDATE jobs SET status = ?, finished_at = ? WHERE id = ?`, string(status), at.UnixNano(), jobID)
	return wrapQuery("Finish", err)
}
