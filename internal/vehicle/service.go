package vehicle

import (
	"context"
	"fmt"
)

// Service provides read access to the vehicle reference table.
type Service struct {
	repo Repository
}

// NewService creates a new vehicle service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a vehicle class by ID.
// Returns ErrVehicleNotFound if the identifier is unknown.
func (s *Service) Get(ctx context.Context, id string) (*Class, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves vehicle classes, optionally filtered by category.
// An empty category returns the full catalog.
func (s *Service) List(ctx context.Context, category string) ([]*Class, error) {
	if category == "" {
		return s.repo.List(ctx)
	}

	cat, ok := ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("invalid category %q", category)
	}
	return s.repo.ListByCategory(ctx, cat)
}

// Upsert creates or replaces a vehicle class after basic range checks.
func (s *Service) Upsert(ctx context.Context, c *Class) error {
	if c.ID == "" {
		return fmt.Errorf("vehicle class id is required")
	}
	if _, ok := ParseCategory(string(c.Category)); !ok {
		return fmt.Errorf("invalid category %q", c.Category)
	}
	if c.BaseImpactScore < 0 || c.BaseImpactScore > 100 {
		return fmt.Errorf("base impact score must be in [0, 100], got %d", c.BaseImpactScore)
	}
	if c.EmissionFactor < 0 {
		return fmt.Errorf("emission factor must be non-negative")
	}
	if c.FuelCostPerKm < 0 {
		return fmt.Errorf("fuel cost per km must be non-negative")
	}
	if c.AvgSpeedKmh <= 0 {
		return fmt.Errorf("average speed must be positive")
	}
	return s.repo.Upsert(ctx, c)
}

// SeedDefaults upserts the built-in catalog. Safe to run on every startup.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, c := range DefaultClasses() {
		if err := s.repo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("seeding %s: %w", c.ID, err)
		}
	}
	return nil
}
