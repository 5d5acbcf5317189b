package vehicle

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewInMemoryRepository creates a new in-memory vehicle repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		classes: make(map[string]*Class),
	}
}

// Get retrieves a vehicle class by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}

	// Return a copy
	cpy := *c
	return &cpy, nil
}

// ListByCategory retrieves all vehicle classes in a category.
func (r *InMemoryRepository) ListByCategory(_ context.Context, category Category) ([]*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var classes []*Class
	for _, c := range r.classes {
		if c.Category == category {
			cpy := *c
			classes = append(classes, &cpy)
		}
	}

	sortClasses(classes)
	return classes, nil
}

// List retrieves all vehicle classes.
func (r *InMemoryRepository) List(_ context.Context) ([]*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		cpy := *c
		classes = append(classes, &cpy)
	}

	sortClasses(classes)
	return classes, nil
}

// Upsert creates or replaces a vehicle class.
func (r *InMemoryRepository) Upsert(_ context.Context, c *Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *c
	r.classes[c.ID] = &cpy
	return nil
}

func sortClasses(classes []*Class) {
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Category != classes[j].Category {
			return classes[i].Category < classes[j].Category
		}
		return classes[i].BaseImpactScore < classes[j].BaseImpactScore
	})
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
