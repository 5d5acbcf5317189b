// Package session provides anonymous session tracking. Sessions are opaque
// client-chosen identifiers; no credentials or personal data are stored.
package session

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Session represents an anonymous visitor session.
type Session struct {
	// ID is the opaque session identifier supplied by the client.
	ID string

	// CalculationCount is how many calculations this session has recorded.
	CalculationCount int

	// FirstSeenAt is when the session was first recorded.
	FirstSeenAt time.Time

	// LastSeenAt is when the session last recorded a calculation.
	LastSeenAt time.Time
}
