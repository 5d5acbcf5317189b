// Package calculation orchestrates impact score calculations: request
// validation, distance resolution, scoring, and session-keyed persistence.
package calculation

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/commutewise/commutewise/internal/scoring"
)

// Repository errors.
var (
	ErrCalculationNotFound = errors.New("calculation not found")
	ErrInvalidCursor       = errors.New("invalid history cursor")
)

// Calculation is one scored calculation persisted against a session.
type Calculation struct {
	ID             string
	SessionID      string
	Mode           string
	VehicleClassID *string
	Occupancy      int
	DistanceKm     float64
	Pattern        string
	Origin         string
	Destination    string
	Result         scoring.Result
	CreatedAt      time.Time
}

// ListOptions controls history pagination.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult is a page of calculations.
type ListResult struct {
	Items      []*Calculation
	NextCursor string
}

// encodeCursor encodes the keyset position after calc. The cursor carries
// both sort keys (created_at, id) so paging stays stable under the
// newest-first ordering even when timestamps collide.
func encodeCursor(calc *Calculation) string {
	return strconv.FormatInt(calc.CreatedAt.UTC().UnixNano(), 10) + ":" + calc.ID
}

// decodeCursor parses a cursor back into its (created_at, id) keyset.
func decodeCursor(cursor string) (time.Time, string, error) {
	nanos, id, ok := strings.Cut(cursor, ":")
	if !ok {
		return time.Time{}, "", ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil || id == "" {
		return time.Time{}, "", ErrInvalidCursor
	}
	return time.Unix(0, n).UTC(), id, nil
}
