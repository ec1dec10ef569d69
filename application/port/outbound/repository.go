package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/fixora/resourcesvc/domain/entity"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository persists one record type. Implementations must keep soft-deleted
// rows: FindByID still returns them, FindAll never does.
type Repository[T entity.Record] interface {
	Create(ctx context.Context, rec T) error
	FindByID(ctx context.Context, id string) (T, error)
	// Update writes the mutable fields and update stamps of a live record.
	// It returns ErrNotFound when no live row matches.
	Update(ctx context.Context, rec T) error
	// SoftDelete stamps the deleting actor and the deletion time in a single
	// atomic write. It returns ErrNotFound when no live row matches.
	SoftDelete(ctx context.Context, id, actorID string, at time.Time) error
	FindAll(ctx context.Context, offset, limit int, filters ListFilters) ([]T, int, error)
}

// ListFilters narrows FindAll. OwnerID is always applied; an empty Name
// disables the case-insensitive substring match.
type ListFilters struct {
	OwnerID string
	Name    string
}
