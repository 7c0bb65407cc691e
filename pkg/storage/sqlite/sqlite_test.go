package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	store := initSqlite(t, context.Background())
	assert.NotNil(t, store)
}

func TestAnd(t *testing.T) {
	t.Run("no conditions matches everything", func(t *testing.T) {
		ctx := context.Background()
		store := initSqlite(t, ctx)

		_, err := store.CreateSeries(ctx, model.Series{Title: "One"})
		require.NoError(t, err)
		_, err = store.CreateSeries(ctx, model.Series{Title: "Two"})
		require.NoError(t, err)

		series, err := store.ListSeries(ctx)
		require.NoError(t, err)
		assert.Len(t, series, 2)
	})
}

func initSqlite(t *testing.T, ctx context.Context) storage.Storage {
	store, err := New(ctx, ":memory:")
	require.NoError(t, err)

	err = store.RunMigrations(ctx)
	require.NoError(t, err)
	return store
}

func ptr[A any](thing A) *A {
	return &thing
}

func date(year int, month time.Month, day int) *time.Time {
	return ptr(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}
