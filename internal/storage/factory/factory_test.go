package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commanderspellbook/variantengine/internal/storage"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), "memory://")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestOpenUnknownSchemeErrors(t *testing.T) {
	_, err := Open(context.Background(), "s3://some-bucket")
	assert.Error(t, err)
}

func TestOpenRejectsMalformedDSN(t *testing.T) {
	_, err := Open(context.Background(), "not-a-dsn")
	assert.Error(t, err)
}

func TestRegisterIsObservedByOpen(t *testing.T) {
	defer delete(registry, "test-scheme")
	var called bool
	Register("test-scheme", func(ctx context.Context, dsn string) (storage.Storage, error) {
		called = true
		return nil, nil
	})
	_, err := Open(context.Background(), "test-scheme://anything")
	require.NoError(t, err)
	assert.True(t, called, "registered Opener was not invoked")
}
