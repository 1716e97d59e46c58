package history

import "context"

// Repository defines the interface for history persistence operations.
// This interface follows the Repository pattern to abstract data access.
type Repository interface {
	// FindAll retrieves all records in storage order.
	FindAll(ctx context.Context) ([]*Record, error)

	// Insert stores a new record.
	Insert(ctx context.Context, record *Record) error

	// Update replaces an existing record, matched by ID.
	Update(ctx context.Context, record *Record) error

	// Delete removes a record by its identifier.
	// Returns ErrRecordNotFound if no record has the ID.
	Delete(ctx context.Context, id string) error

	// Clear removes all records.
	Clear(ctx context.Context) error
}
