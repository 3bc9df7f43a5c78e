package main

import (
	"context"
	"errors"

	"github.com/commanderspellbook/variantengine/internal/config"
	"github.com/commanderspellbook/variantengine/internal/jobdriver"
	"github.com/commanderspellbook/variantengine/internal/storage"
	"github.com/commanderspellbook/variantengine/internal/storage/factory"
)

// loadConfig layers the --config file and SPELLBOOK_* environment into one
// Config. The --db flag is not part of it: dsnFromFlagsOrConfig applies
// that on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func dsnFromFlagsOrConfig(cfg *config.Config) string {
	if dbDSN != "" {
		return dbDSN
	}
	return cfg.DBDSN()
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	return factory.Open(ctx, dsnFromFlagsOrConfig(cfg))
}

// localLeasePath returns the path for this job name's on-disk advisory
// lease: "<jobName>.lease", relative to the current working directory, so
// runs started from different directories use different lease files.
func localLeasePath(jobName string) string {
	return jobName + ".lease"
}

// localLeaseHeld probes path by attempting (and immediately releasing) an
// acquire: if another process holds it, AcquireLocalLease fails with
// ErrJobAlreadyRunning and leaves the held lease untouched.
func localLeaseHeld(path string) (bool, error) {
	lease, err := jobdriver.AcquireLocalLease(path, "generate")
	if err != nil {
		if errors.Is(err, jobdriver.ErrJobAlreadyRunning) {
			return true, nil
		}
		return false, err
	}
	defer lease.Release()
	return false, nil
}
