// Package worker provides background processing for Commutewise. It consumes
// recorded-calculation events and maintains daily usage aggregates.
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/commutewise/commutewise/internal/events"
)

// DailyAggregate is one day's rollup of calculations for a transport mode.
type DailyAggregate struct {
	Day             time.Time `json:"day"`
	Mode            string    `json:"mode"`
	Count           int64     `json:"count"`
	TotalScore      int64     `json:"totalScore"`
	TotalDistanceKm float64   `json:"totalDistanceKm"`
}

// AvgScore returns the mean impact score for the day, or 0 when empty.
func (a *DailyAggregate) AvgScore() float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.TotalScore) / float64(a.Count)
}

// AggregateRepository persists daily calculation aggregates.
type AggregateRepository interface {
	// Apply folds one calculation into the aggregate for its day and mode.
	Apply(ctx context.Context, day time.Time, mode string, score int, distanceKm float64) error

	// ListRange returns aggregates for days in [from, to], ordered by day.
	ListRange(ctx context.Context, from, to time.Time) ([]*DailyAggregate, error)
}

// PostgresAggregateRepository implements AggregateRepository using PostgreSQL.
type PostgresAggregateRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAggregateRepository creates a new PostgreSQL aggregate repository.
func NewPostgresAggregateRepository(pool *pgxpool.Pool) *PostgresAggregateRepository {
	return &PostgresAggregateRepository{pool: pool}
}

// Apply upserts the aggregate row for the given day and mode.
func (r *PostgresAggregateRepository) Apply(ctx context.Context, day time.Time, mode string, score int, distanceKm float64) error {
	query := `
		INSERT INTO calculation_daily_aggregates (day, mode, calc_count, total_score, total_distance_km)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (day, mode) DO UPDATE SET
			calc_count = calculation_daily_aggregates.calc_count + 1,
			total_score = calculation_daily_aggregates.total_score + EXCLUDED.total_score,
			total_distance_km = calculation_daily_aggregates.total_distance_km + EXCLUDED.total_distance_km
	`

	_, err := r.pool.Exec(ctx, query, day, mode, score, distanceKm)
	if err != nil {
		return fmt.Errorf("applying daily aggregate: %w", err)
	}
	return nil
}

// ListRange retrieves aggregates for the given day range.
func (r *PostgresAggregateRepository) ListRange(ctx context.Context, from, to time.Time) ([]*DailyAggregate, error) {
	query := `
		SELECT day, mode, calc_count, total_score, total_distance_km
		FROM calculation_daily_aggregates
		WHERE day >= $1 AND day <= $2
		ORDER BY day, mode
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing daily aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []*DailyAggregate
	for rows.Next() {
		var a DailyAggregate
		if err := rows.Scan(&a.Day, &a.Mode, &a.Count, &a.TotalScore, &a.TotalDistanceKm); err != nil {
			return nil, fmt.Errorf("scanning daily aggregate: %w", err)
		}
		aggregates = append(aggregates, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily aggregates: %w", err)
	}

	return aggregates, nil
}

// InMemoryAggregateRepository implements AggregateRepository in memory.
// Used for testing and local development.
type InMemoryAggregateRepository struct {
	mu         sync.RWMutex
	aggregates map[string]*DailyAggregate // key: day|mode
}

// NewInMemoryAggregateRepository creates a new in-memory aggregate repository.
func NewInMemoryAggregateRepository() *InMemoryAggregateRepository {
	return &InMemoryAggregateRepository{
		aggregates: make(map[string]*DailyAggregate),
	}
}

// Apply folds one calculation into the in-memory aggregate.
func (r *InMemoryAggregateRepository) Apply(_ context.Context, day time.Time, mode string, score int, distanceKm float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := day.Format("2006-01-02") + "|" + mode
	agg, ok := r.aggregates[key]
	if !ok {
		agg = &DailyAggregate{Day: day, Mode: mode}
		r.aggregates[key] = agg
	}

	agg.Count++
	agg.TotalScore += int64(score)
	agg.TotalDistanceKm += distanceKm
	return nil
}

// ListRange retrieves aggregates for the given day range, ordered by day
// then mode.
func (r *InMemoryAggregateRepository) ListRange(_ context.Context, from, to time.Time) ([]*DailyAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var aggregates []*DailyAggregate
	for _, agg := range r.aggregates {
		if agg.Day.Before(from) || agg.Day.After(to) {
			continue
		}
		copied := *agg
		aggregates = append(aggregates, &copied)
	}

	sort.Slice(aggregates, func(i, j int) bool {
		if !aggregates[i].Day.Equal(aggregates[j].Day) {
			return aggregates[i].Day.Before(aggregates[j].Day)
		}
		return aggregates[i].Mode < aggregates[j].Mode
	})

	return aggregates, nil
}

// Interface guards.
var (
	_ AggregateRepository = (*PostgresAggregateRepository)(nil)
	_ AggregateRepository = (*InMemoryAggregateRepository)(nil)
)

// Aggregator folds recorded-calculation events into daily aggregates.
type Aggregator struct {
	repo   AggregateRepository
	logger zerolog.Logger
}

// NewAggregator creates a new aggregator.
func NewAggregator(repo AggregateRepository, logger zerolog.Logger) *Aggregator {
	return &Aggregator{repo: repo, logger: logger}
}

// Process applies one event to the aggregates. The event day is truncated to
// midnight UTC so all calculations of a day share one row per mode.
func (a *Aggregator) Process(ctx context.Context, event *events.CalculationRecorded) error {
	if event.Mode == "" {
		// Skip rather than nack: redelivery cannot fix a malformed event.
		a.logger.Warn().
			Str("calculation_id", event.CalculationID).
			Msg("event has no transport mode, skipping")
		return nil
	}

	day := event.RecordedAt.UTC().Truncate(24 * time.Hour)

	if err := a.repo.Apply(ctx, day, event.Mode, event.Score, event.DistanceKm); err != nil {
		return err
	}

	a.logger.Debug().
		Str("calculation_id", event.CalculationID).
		Str("mode", event.Mode).
		Time("day", day).
		Msg("calculation aggregated")

	return nil
}
