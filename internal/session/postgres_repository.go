package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL session repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Touch records activity for a session. The insert-or-update is keyed on the
// unique session_id column, so concurrent first-time requests from the same
// session cannot race into duplicate rows.
func (r *PostgresRepository) Touch(ctx context.Context, id string) error {
	query := `
		INSERT INTO sessions (session_id, calculation_count, first_seen_at, last_seen_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (session_id) DO UPDATE SET
			calculation_count = sessions.calculation_count + 1,
			last_seen_at = EXCLUDED.last_seen_at
	`

	_, err := r.pool.Exec(ctx, query, id, time.Now())
	return err
}

// Get retrieves a session by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT session_id, calculation_count, first_seen_at, last_seen_at
		FROM sessions
		WHERE session_id = $1
	`

	var s Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.CalculationCount,
		&s.FirstSeenAt,
		&s.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
