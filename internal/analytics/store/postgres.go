package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/link-lifecycle/internal/shortener"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS link_activities (
		id          UUID PRIMARY KEY,
		kind        TEXT NOT NULL,
		level       TEXT NOT NULL,
		message     TEXT NOT NULL,
		data        JSONB,
		occurred_at TIMESTAMPTZ NOT NULL
	)
`

// Postgres appends activities to the link_activities table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL activity store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the activity table when it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)

	return err
}

func (p *Postgres) SaveActivity(ctx context.Context, activity *shortener.Activity) error {
	data, err := json.Marshal(activity.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO link_activities (id, kind, level, message, data, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = p.pool.Exec(ctx, query,
		uuid.New(),
		activity.Kind,
		activity.Level,
		activity.Message,
		string(data),
		activity.Timestamp,
	)

	return err
}

// CountByKind returns how many activities of each kind were stored.
func (p *Postgres) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT kind, count(*) FROM link_activities GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}

	for rows.Next() {
		var (
			kind  string
			count int
		)

		if err = rows.Scan(&kind, &count); err != nil {
			return nil, err
		}

		counts[kind] = count
	}

	return counts, rows.Err()
}
