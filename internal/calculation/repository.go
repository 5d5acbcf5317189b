package calculation

import "context"

// Repository defines the interface for calculation storage.
type Repository interface {
	// Create persists a new calculation.
	Create(ctx context.Context, calc *Calculation) error

	// Get retrieves a calculation by ID.
	Get(ctx context.Context, id string) (*Calculation, error)

	// ListBySession retrieves calculations for a session, newest first.
	ListBySession(ctx context.Context, sessionID string, opts ListOptions) (*ListResult, error)
}
