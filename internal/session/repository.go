package session

import "context"

// Repository defines the interface for session persistence.
type Repository interface {
	// Touch records activity for a session, creating it if needed.
	// The operation is idempotent: repeated calls with the same session ID
	// update the existing row rather than creating duplicates.
	Touch(ctx context.Context, id string) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session has never been recorded.
	Get(ctx context.Context, id string) (*Session, error)
}
