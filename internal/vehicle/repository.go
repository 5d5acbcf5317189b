package vehicle

import "context"

// Repository defines the interface for vehicle reference data.
type Repository interface {
	// Get retrieves a vehicle class by ID.
	// Returns ErrVehicleNotFound if the identifier is unknown.
	Get(ctx context.Context, id string) (*Class, error)

	// ListByCategory retrieves all vehicle classes in a category.
	ListByCategory(ctx context.Context, category Category) ([]*Class, error)

	// List retrieves all vehicle classes.
	List(ctx context.Context) ([]*Class, error)

	// Upsert creates or replaces a vehicle class. Used by seeding only;
	// the scoring path never writes.
	Upsert(ctx context.Context, class *Class) error
}
