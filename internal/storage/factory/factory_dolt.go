//go:build cgo

package factory

import (
	"context"

	"github.com/commanderspellbook/variantengine/internal/storage"
	"github.com/commanderspellbook/variantengine/internal/storage/dolt"
)

func init() {
	Register("file", func(ctx context.Context, dsn string) (storage.Storage, error) {
		return dolt.Open(ctx, dsn)
	})
}
