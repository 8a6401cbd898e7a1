package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS link_collections (
		slot       TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// SQLiteCollection stores the collection as one row of a local SQLite file.
type SQLiteCollection struct {
	db     *sqlx.DB
	slot   string
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	return db, nil
}

// NewSQLiteCollection creates a SQLite-backed collection.
func NewSQLiteCollection(db *sqlx.DB, slot string, logger *zap.Logger) *SQLiteCollection {
	return &SQLiteCollection{db: db, slot: slot, logger: logger}
}

// EnsureSchema creates the backing table when it does not exist.
func (s *SQLiteCollection) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)

	return err
}

func (s *SQLiteCollection) Load(ctx context.Context) ([]shortener.Link, error) {
	var payload string

	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM link_collections WHERE slot = ?`, s.slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return decodeLinks([]byte(payload), s.slot, s.logger), nil
}

func (s *SQLiteCollection) Save(ctx context.Context, links []shortener.Link) error {
	data, err := encodeLinks(links)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO link_collections (slot, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`, s.slot, string(data))

	return err
}

// Ping checks the database handle.
func (s *SQLiteCollection) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database handle.
func (s *SQLiteCollection) Shutdown() error {
	return s.db.Close()
}

// Compile-time check.
var _ shortener.Collection = (*SQLiteCollection)(nil)
