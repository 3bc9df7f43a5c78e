// Package storage defines the combined read/write port the engine uses to
// talk to the persisted combo catalog, plus the concrete backends that
// implement it.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors for common storage conditions, in the style of the
// teacher's sqlite backend (internal/storage/sqlite/errors.go).
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint violation. A second job
	// starting under a name that already holds an unexpired lease is
	// reported as jobdriver.ErrJobAlreadyRunning instead.
	ErrConflict = errors.New("conflict")

	// ErrSnapshotInconsistent indicates the snapshot read observed a
	// mutually inconsistent set of rows (spec §7).
	ErrSnapshotInconsistent = errors.New("snapshot inconsistent")

	// ErrPersistence indicates a backend (dolt or memory) failed to read or
	// write the catalog for a reason outside the caller's control — a hard
	// error the engine must abort the run for (spec §7), not skip past.
	ErrPersistence = errors.New("persistence error")
)

// WrapDBError wraps a database error with operation context, converting
// sql.ErrNoRows to ErrNotFound and everything else to ErrPersistence so
// callers can errors.Is against one sentinel regardless of backend.
func WrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
