// Package factory selects a storage.Storage backend from a DSN string, the
// way the teacher's internal/storage/factory dispatches by backend name.
// The CGO-only dolt backend is registered by an init() in this package's
// cgo-gated factory_dolt.go, the only file here that imports it; a
// non-CGO build still links, it just can't open the dolt backend's DSNs.
package factory

import (
	"context"
	"fmt"
	"strings"

	"github.com/commanderspellbook/variantengine/internal/storage"
	"github.com/commanderspellbook/variantengine/internal/storage/memory"
)

// Opener constructs a storage.Storage from a full DSN string.
type Opener func(ctx context.Context, dsn string) (storage.Storage, error)

var registry = make(map[string]Opener)

// Register adds an Opener under scheme. Called from an init() (such as
// factory_dolt.go's), not by callers of Open.
func Register(scheme string, open Opener) {
	registry[scheme] = open
}

// Open dispatches dsn to the backend named by its scheme
// (scheme://rest). "memory://" is handled directly since it has no
// external dependency; "file://" (the embedded Dolt connector's own DSN
// form, e.g. "file:///var/lib/spellbook?commitname=...") must have been
// registered by the CGO-gated init() in factory_dolt.go.
func Open(ctx context.Context, dsn string) (storage.Storage, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("factory: invalid DSN %q, want scheme://...", dsn)
	}
	if scheme == "memory" {
		return memory.New(), nil
	}
	open, ok := registry[scheme]
	if !ok {
		return nil, fmt.Errorf("factory: no storage backend registered for scheme %q (CGO backends require building with CGO_ENABLED=1)", scheme)
	}
	return open(ctx, dsn)
}
