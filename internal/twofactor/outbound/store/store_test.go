package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/twofactor/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type secretStore interface {
	GetSecret(ctx context.Context, key string) (*entity.SecretRecord, error)
	CreateSecret(ctx context.Context, rec entity.SecretRecord) error
	UpdateSecret(ctx context.Context, rec entity.SecretRecord) error
	DeleteSecret(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func testStoreContract(t *testing.T, s secretStore) {
	t.Helper()

	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := s.GetSecret(ctx, "missing")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("create then get", func(t *testing.T) {
		rec := entity.SecretRecord{Key: "k1", Ciphertext: []byte{1, 2, 3}, CreatedAt: created, UpdatedAt: created}
		require.NoError(t, s.CreateSecret(ctx, rec))

		got, err := s.GetSecret(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, "k1", got.Key)
		assert.Equal(t, []byte{1, 2, 3}, got.Ciphertext)
		assert.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("create is create-only", func(t *testing.T) {
		err := s.CreateSecret(ctx, entity.SecretRecord{Key: "k1", Ciphertext: []byte{9}, CreatedAt: created, UpdatedAt: created})
		assert.ErrorIs(t, err, goerror.ErrConflict)

		got, err := s.GetSecret(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, got.Ciphertext)
	})

	t.Run("update replaces secret and keeps created at", func(t *testing.T) {
		later := created.Add(time.Hour)
		require.NoError(t, s.UpdateSecret(ctx, entity.SecretRecord{Key: "k1", Ciphertext: []byte{4, 5}, CreatedAt: later, UpdatedAt: later}))

		got, err := s.GetSecret(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte{4, 5}, got.Ciphertext)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.True(t, later.Equal(got.UpdatedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		err := s.UpdateSecret(ctx, entity.SecretRecord{Key: "nope", Ciphertext: []byte{1}, UpdatedAt: created})
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteSecret(ctx, "k1"))

		_, err := s.GetSecret(ctx, "k1")
		assert.ErrorIs(t, err, goerror.ErrNotFound)

		assert.ErrorIs(t, s.DeleteSecret(ctx, "k1"), goerror.ErrNotFound)
	})

	t.Run("concurrent create has one winner", func(t *testing.T) {
		const n = 16

		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := range n {
			wg.Go(func() {
				errs[i] = s.CreateSecret(ctx, entity.SecretRecord{
					Key:        "race",
					Ciphertext: []byte(fmt.Sprintf("ct-%d", i)),
					CreatedAt:  created,
					UpdatedAt:  created,
				})
			})
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, goerror.ErrConflict)
		}
		assert.Equal(t, 1, wins)
	})
}
