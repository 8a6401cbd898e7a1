package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS link_collections (
		slot       TEXT PRIMARY KEY,
		payload    JSON NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresCollection stores the collection as one JSON row keyed by slot name.
type PostgresCollection struct {
	pool   *pgxpool.Pool
	slot   string
	logger *zap.Logger
}

// NewPostgresCollection creates a PostgreSQL-backed collection.
func NewPostgresCollection(pool *pgxpool.Pool, slot string, logger *zap.Logger) *PostgresCollection {
	return &PostgresCollection{pool: pool, slot: slot, logger: logger}
}

// EnsureSchema creates the backing table when it does not exist.
func (p *PostgresCollection) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)

	return err
}

func (p *PostgresCollection) Load(ctx context.Context) ([]shortener.Link, error) {
	query := `
		SELECT payload
		FROM link_collections
		WHERE slot = $1
	`

	var payload []byte

	err := p.pool.QueryRow(ctx, query, p.slot).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return decodeLinks(payload, p.slot, p.logger), nil
}

func (p *PostgresCollection) Save(ctx context.Context, links []shortener.Link) error {
	data, err := encodeLinks(links)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO link_collections (slot, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err = p.pool.Exec(ctx, query, p.slot, string(data))

	return err
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresCollection) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Compile-time check.
var _ shortener.Collection = (*PostgresCollection)(nil)
