package jobdriver

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/commanderspellbook/variantengine/internal/lockfile"
)

// LocalLease is the single-host advisory layer underneath the DB-level job
// lease (SPEC_FULL §2 component N): in the embedded deployment mode where
// the database itself has no cross-process lock manager, an OS file lock
// on a well-known path prevents two local processes from both believing
// they hold the same named job's lease.
type LocalLease struct {
	file *os.File
	path string
}

type leaseInfo struct {
	PID       int       `json:"pid"`
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`
}

// AcquireLocalLease attempts to take the OS-level lock at path. If the
// lock is held by a process that is no longer alive, it is treated as
// abandoned and stolen.
func AcquireLocalLease(path, name string) (*LocalLease, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("jobdriver: open lease file: %w", err)
	}

	if err := lockfile.FlockExclusiveNonBlocking(f); err != nil {
		if !lockfile.IsLocked(err) && err != lockfile.ErrLockBusy {
			f.Close()
			return nil, fmt.Errorf("jobdriver: lock lease file: %w", err)
		}
		if stale, staleErr := isStale(path); staleErr == nil && stale {
			if err := lockfile.FlockExclusiveBlocking(f); err != nil {
				f.Close()
				return nil, fmt.Errorf("jobdriver: steal stale lease: %w", err)
			}
		} else {
			f.Close()
			return nil, ErrJobAlreadyRunning
		}
	}

	info := leaseInfo{PID: os.Getpid(), Name: name, StartedAt: time.Now()}
	data, _ := json.Marshal(info)
	if err := f.Truncate(0); err != nil {
		lockfile.FlockUnlock(f)
		f.Close()
		return nil, fmt.Errorf("jobdriver: truncate lease file: %w", err)
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		lockfile.FlockUnlock(f)
		f.Close()
		return nil, fmt.Errorf("jobdriver: write lease file: %w", err)
	}
	return &LocalLease{file: f, path: path}, nil
}

func isStale(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	var info leaseInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return false, err
	}
	return !lockfile.IsProcessAlive(info.PID), nil
}

// Release unlocks and closes the lease file, leaving it in place for the
// next acquirer.
func (l *LocalLease) Release() error {
	if err := lockfile.FlockUnlock(l.file); err != nil {
		l.file.Close()
		return fmt.Errorf("jobdriver: unlock lease file: %w", err)
	}
	return l.file.Close()
}
