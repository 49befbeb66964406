package registry

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisRegistryStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}
	store, err := NewRedisRegistryStore(context.Background(), &RegistryConfig{Path: addr})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisApplyGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)
	project := "test-" + uuid.New().String()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return created }

	require.NoError(t, store.ApplyEntity(ctx, project, driverEntity(t, "first")))
	store.now = func() time.Time { return created.Add(time.Hour) }
	require.NoError(t, store.ApplyEntity(ctx, project, driverEntity(t, "second")))

	stored, err := store.GetEntity(ctx, project, "driver")
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Description)
	assert.True(t, created.Equal(*stored.CreatedTimestamp))

	entities, err := store.ListEntities(ctx, project)
	require.NoError(t, err)
	assert.Len(t, entities, 1)

	require.NoError(t, store.DeleteEntity(ctx, project, "driver"))
	_, err = store.GetEntity(ctx, project, "driver")
	assert.True(t, errors.Is(err, ErrEntityNotFound))
	assert.True(t, errors.Is(store.DeleteEntity(ctx, project, "driver"), ErrEntityNotFound))
}

func TestNewRedisRegistryStoreFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewRedisRegistryStore(ctx, &RegistryConfig{Path: "127.0.0.1:1"})
	assert.Error(t, err)
}
