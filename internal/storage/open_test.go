package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/config"
	"taskapi/internal/docstore"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, &config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	defer store.Close(ctx)

	require.NoError(t, store.Ping(ctx))

	users := store.Collection(docstore.UsersCollection)
	_, err = users.InsertOne(ctx, docstore.Document{"email": "a@b.com"})
	require.NoError(t, err)
	_, err = users.InsertOne(ctx, docstore.Document{"email": "a@b.com"})
	assert.True(t, errors.Is(err, docstore.ErrDuplicate))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}
