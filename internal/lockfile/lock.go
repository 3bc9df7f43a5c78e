package lockfile

import (
	"errors"
)

// errProcessLocked is the sentinel behind ErrLocked: some other process
// already holds the lease this lock file represents.
var errProcessLocked = errors.New("process lock already held by another process")

// ErrLocked is returned when a lock cannot be acquired because it is held by another process.
var ErrLocked = errProcessLocked

// ErrLockBusy is returned when a non-blocking lock cannot be acquired
// because another process holds a conflicting lock.
var ErrLockBusy = errors.New("lock busy: held by another process")

// IsLocked returns true if the error indicates a lock is held by another process.
func IsLocked(err error) bool {
	return err == errProcessLocked || err == errDaemonLocked
}

// IsProcessAlive reports whether pid names a still-running process on this
// host. Callers use it to decide whether an advisory lock left behind by a
// crashed process is safe to steal.
func IsProcessAlive(pid int) bool {
	return isProcessRunning(pid)
}
