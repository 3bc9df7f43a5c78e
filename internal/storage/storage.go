package storage

import (
	"context"

	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/snapshot"
)

// Persistence is the write-side port (spec §6): a single durable commit
// applying the reconciler's output. Job-message/status updates are not
// part of it; backends provide those through jobdriver.Port.
type Persistence interface {
	// CommitVariants durably writes every variant in variants (insert or
	// update) and deletes every unique_id in deleteIDs, as one atomic
	// transaction.
	CommitVariants(ctx context.Context, variants map[string]*model.Variant, deleteIDs []string) error
}

// Storage is the combined port the engine opens once per run: a
// snapshot.Port for the consistent read and a Persistence for the final
// commit. Concrete backends (memory, dolt) implement both.
type Storage interface {
	snapshot.Port
	Persistence
}
