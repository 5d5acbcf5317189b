package calculation

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commutewise/commutewise/internal/scoring"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// The full scoring result is stored as JSONB next to the score and
// confidence columns used for aggregate queries.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL calculation repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new calculation.
func (r *PostgresRepository) Create(ctx context.Context, calc *Calculation) error {
	query := `
		INSERT INTO calculations (
			id, session_id, mode, vehicle_class_id, occupancy,
			distance_km, pattern, origin, destination,
			score, confidence, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	resultJSON, err := json.Marshal(calc.Result)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		calc.ID,
		calc.SessionID,
		calc.Mode,
		calc.VehicleClassID,
		calc.Occupancy,
		calc.DistanceKm,
		calc.Pattern,
		calc.Origin,
		calc.Destination,
		calc.Result.Score,
		string(calc.Result.Confidence),
		resultJSON,
		calc.CreatedAt,
	)
	return err
}

// Get retrieves a calculation by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Calculation, error) {
	query := `
		SELECT
			id, session_id, mode, vehicle_class_id, occupancy,
			distance_km, pattern, origin, destination,
			result, created_at
		FROM calculations
		WHERE id = $1
	`

	calc, err := scanCalculation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCalculationNotFound
		}
		return nil, err
	}
	return calc, nil
}

// ListBySession retrieves calculations for a session, newest first.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	const selectColumns = `
		SELECT
			id, session_id, mode, vehicle_class_id, occupancy,
			distance_km, pattern, origin, destination,
			result, created_at
		FROM calculations
	`

	var (
		query string
		args  []interface{}
	)
	if opts.Cursor != "" {
		cursorAt, cursorID, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		// Keyset predicate matches the (created_at, id) sort exactly.
		query = selectColumns + `
			WHERE session_id = $1 AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		`
		args = []interface{}{sessionID, cursorAt, cursorID, fetchLimit}
	} else {
		query = selectColumns + `
			WHERE session_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		args = []interface{}{sessionID, fetchLimit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []*Calculation
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: calcs}

	// If we got more results than the limit, there are more pages
	if len(calcs) > limit {
		result.Items = calcs[:limit]
		result.NextCursor = encodeCursor(calcs[limit-1])
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanCalculation scans one calculation row, unmarshalling the result JSONB.
func scanCalculation(row rowScanner) (*Calculation, error) {
	var (
		calc       Calculation
		resultJSON []byte
	)

	err := row.Scan(
		&calc.ID,
		&calc.SessionID,
		&calc.Mode,
		&calc.VehicleClassID,
		&calc.Occupancy,
		&calc.DistanceKm,
		&calc.Pattern,
		&calc.Origin,
		&calc.Destination,
		&resultJSON,
		&calc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	var result scoring.Result
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, err
	}
	calc.Result = result

	return &calc, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
