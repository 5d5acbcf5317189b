package calculation

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu    sync.Mutex
	calcs map[string]*Calculation
}

// NewInMemoryRepository creates a new in-memory calculation repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		calcs: make(map[string]*Calculation),
	}
}

// Create persists a new calculation.
func (r *InMemoryRepository) Create(_ context.Context, calc *Calculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *calc
	r.calcs[calc.ID] = &cpy
	return nil
}

// Get retrieves a calculation by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Calculation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	calc, ok := r.calcs[id]
	if !ok {
		return nil, ErrCalculationNotFound
	}

	cpy := *calc
	return &cpy, nil
}

// ListBySession retrieves calculations for a session, newest first.
func (r *InMemoryRepository) ListBySession(_ context.Context, sessionID string, opts ListOptions) (*ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	var calcs []*Calculation
	for _, calc := range r.calcs {
		if calc.SessionID != sessionID {
			continue
		}
		cpy := *calc
		calcs = append(calcs, &cpy)
	}

	sort.Slice(calcs, func(i, j int) bool {
		if calcs[i].CreatedAt.Equal(calcs[j].CreatedAt) {
			return calcs[i].ID > calcs[j].ID
		}
		return calcs[i].CreatedAt.After(calcs[j].CreatedAt)
	})

	if opts.Cursor != "" {
		cursorAt, cursorID, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		kept := calcs[:0]
		for _, calc := range calcs {
			at := calc.CreatedAt.UTC()
			if at.Before(cursorAt) || (at.Equal(cursorAt) && calc.ID < cursorID) {
				kept = append(kept, calc)
			}
		}
		calcs = kept
	}

	result := &ListResult{Items: calcs}
	if len(calcs) > limit {
		result.Items = calcs[:limit]
		result.NextCursor = encodeCursor(calcs[limit-1])
	}

	return result, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
