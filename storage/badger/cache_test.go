package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/nutridex/core"
)

func TestCacheRepository(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	cache := NewCacheRepository(backend)
	ctx := context.Background()

	t.Run("load missing returns nil", func(t *testing.T) {
		record, err := cache.LoadCacheRecord(ctx, "main")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		record := &core.CacheRecord{
			Key:       "main",
			Payload:   []byte{1, 2, 3},
			Checksum:  77,
			ItemCount: 10,
			Version:   3,
			CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, cache.SaveCacheRecord(ctx, record))

		got, err := cache.LoadCacheRecord(ctx, "main")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, record, got)
	})

	t.Run("save replaces previous record", func(t *testing.T) {
		newer := &core.CacheRecord{
			Key:       "main",
			Payload:   []byte{9, 9},
			Checksum:  88,
			ItemCount: 11,
			Version:   3,
			CreatedAt: time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, cache.SaveCacheRecord(ctx, newer))

		got, err := cache.LoadCacheRecord(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, []byte{9, 9}, got.Payload)
		assert.Equal(t, int32(11), got.ItemCount)
	})

	t.Run("save fills zero CreatedAt", func(t *testing.T) {
		record := &core.CacheRecord{Key: "other", Payload: []byte{1}}
		require.NoError(t, cache.SaveCacheRecord(ctx, record))
		assert.False(t, record.CreatedAt.IsZero())
	})

	t.Run("delete removes record", func(t *testing.T) {
		require.NoError(t, cache.DeleteCacheRecord(ctx, "main"))
		got, err := cache.LoadCacheRecord(ctx, "main")
		require.NoError(t, err)
		assert.Nil(t, got)

		// Deleting again is not an error.
		assert.NoError(t, cache.DeleteCacheRecord(ctx, "main"))
	})
}
