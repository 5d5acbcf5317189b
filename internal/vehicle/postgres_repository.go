package vehicle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL vehicle repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const classColumns = `
	id, name, category,
	emission_factor_kg_per_km, fuel_cost_per_km, avg_speed_kmh, base_impact_score
`

// Get retrieves a vehicle class by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Class, error) {
	query := `SELECT ` + classColumns + ` FROM vehicle_classes WHERE id = $1`

	var c Class
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Category,
		&c.EmissionFactor,
		&c.FuelCostPerKm,
		&c.AvgSpeedKmh,
		&c.BaseImpactScore,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return &c, nil
}

// ListByCategory retrieves all vehicle classes in a category.
func (r *PostgresRepository) ListByCategory(ctx context.Context, category Category) ([]*Class, error) {
	query := `SELECT ` + classColumns + ` FROM vehicle_classes WHERE category = $1 ORDER BY base_impact_score`
	return r.queryClasses(ctx, query, category)
}

// List retrieves all vehicle classes.
func (r *PostgresRepository) List(ctx context.Context) ([]*Class, error) {
	query := `SELECT ` + classColumns + ` FROM vehicle_classes ORDER BY category, base_impact_score`
	return r.queryClasses(ctx, query)
}

func (r *PostgresRepository) queryClasses(ctx context.Context, query string, args ...interface{}) ([]*Class, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*Class
	for rows.Next() {
		var c Class
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Category,
			&c.EmissionFactor,
			&c.FuelCostPerKm,
			&c.AvgSpeedKmh,
			&c.BaseImpactScore,
		)
		if err != nil {
			return nil, err
		}
		classes = append(classes, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return classes, nil
}

// Upsert creates or replaces a vehicle class.
func (r *PostgresRepository) Upsert(ctx context.Context, c *Class) error {
	query := `
		INSERT INTO vehicle_classes (
			id, name, category,
			emission_factor_kg_per_km, fuel_cost_per_km, avg_speed_kmh, base_impact_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			emission_factor_kg_per_km = EXCLUDED.emission_factor_kg_per_km,
			fuel_cost_per_km = EXCLUDED.fuel_cost_per_km,
			avg_speed_kmh = EXCLUDED.avg_speed_kmh,
			base_impact_score = EXCLUDED.base_impact_score
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Category,
		c.EmissionFactor,
		c.FuelCostPerKm,
		c.AvgSpeedKmh,
		c.BaseImpactScore,
	)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
