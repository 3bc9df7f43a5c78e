package jobdriver

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLocalLeaseExclusivity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generate.lease")

	first, err := AcquireLocalLease(path, "generate")
	if err != nil {
		t.Fatalf("AcquireLocalLease: %v", err)
	}

	_, err = AcquireLocalLease(path, "generate")
	if !errors.Is(err, ErrJobAlreadyRunning) {
		t.Fatalf("second acquire err = %v, want ErrJobAlreadyRunning", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	second, err := AcquireLocalLease(path, "generate")
	if err != nil {
		t.Fatalf("AcquireLocalLease after release: %v", err)
	}
	defer second.Release()
}
