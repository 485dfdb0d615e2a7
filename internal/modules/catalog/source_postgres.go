// README: Configuration documents stored in PostgreSQL (see migrations/0001_config_documents.sql).
package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "towquote/internal/errors"
)

// PostgresSource keeps bodies in a json (not jsonb) column so key order survives.
type PostgresSource struct {
	db *pgxpool.Pool
}

func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Document(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := s.db.QueryRow(ctx, `SELECT body::text FROM config_documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Configuration("missing configuration document %q", name)
	}
	if err != nil {
		return nil, apperrors.Upstream(err, "read %s from postgres", name)
	}
	return []byte(body), nil
}

func (s *PostgresSource) Put(ctx context.Context, name string, body []byte) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO config_documents (name, body, updated_at)
        VALUES ($1, $2::json, now())
        ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		name, string(body),
	)
	return err
}
