package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"github.com/serroba/link-lifecycle/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteCollection(t *testing.T) *store.SQLiteCollection {
	t.Helper()

	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "links.db"))
	require.NoError(t, err)

	c := store.NewSQLiteCollection(db, shortener.DefaultSlot, zap.NewNop())
	require.NoError(t, c.EnsureSchema(context.Background()))

	t.Cleanup(func() { _ = c.Shutdown() })

	return c
}

func TestSQLiteCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty when the slot is absent", func(t *testing.T) {
		c := newSQLiteCollection(t)

		links, err := c.Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("saves and loads the collection", func(t *testing.T) {
		c := newSQLiteCollection(t)
		require.NoError(t, c.Save(ctx, sampleLinks()))

		links, err := c.Load(ctx)

		require.NoError(t, err)
		assert.Equal(t, sampleLinks(), links)
	})

	t.Run("overwrites the slot on each save", func(t *testing.T) {
		c := newSQLiteCollection(t)
		require.NoError(t, c.Save(ctx, sampleLinks()))
		require.NoError(t, c.Save(ctx, sampleLinks()[:1]))

		links, err := c.Load(ctx)

		require.NoError(t, err)
		assert.Len(t, links, 1)
	})

	t.Run("pings the database", func(t *testing.T) {
		c := newSQLiteCollection(t)

		assert.NoError(t, c.Ping(ctx))
	})
}

func newMockedSQLite(t *testing.T) (*store.SQLiteCollection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return store.NewSQLiteCollection(sqlx.NewDb(db, "sqlmock"), "test", zap.NewNop()), mock
}

func TestSQLiteCollection_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("treats corrupt payload as empty", func(t *testing.T) {
		c, mock := newMockedSQLite(t)
		mock.ExpectQuery("SELECT payload FROM link_collections").
			WithArgs("test").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow("[{broken"))

		links, err := c.Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, links)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns query failures", func(t *testing.T) {
		c, mock := newMockedSQLite(t)
		mock.ExpectQuery("SELECT payload FROM link_collections").
			WithArgs("test").
			WillReturnError(errors.New("disk I/O error"))

		_, err := c.Load(ctx)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns write failures", func(t *testing.T) {
		c, mock := newMockedSQLite(t)
		mock.ExpectExec("INSERT INTO link_collections").
			WithArgs("test", "[]").
			WillReturnError(errors.New("database is locked"))

		err := c.Save(ctx, nil)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
