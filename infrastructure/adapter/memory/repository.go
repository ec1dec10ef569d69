package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/domain/entity"
)

// Repository is an in-process outbound.Repository used for local runs and tests.
// Stored records are cloned on the way in and out so callers never share state
// with the store.
type Repository[T entity.Record] struct {
	mu      sync.RWMutex
	records map[string]T
	clone   func(T) T
}

func NewRepository[T entity.Record](clone func(T) T) *Repository[T] {
	return &Repository[T]{
		records: make(map[string]T),
		clone:   clone,
	}
}

func (r *Repository[T]) Create(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := rec.GetID()
	if id == "" {
		return fmt.Errorf("record ID is required")
	}
	if _, exists := r.records[id]; exists {
		return fmt.Errorf("record %s already exists", id)
	}

	r.records[id] = r.clone(rec)
	return nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return zero, outbound.ErrNotFound
	}
	return r.clone(rec), nil
}

func (r *Repository[T]) Update(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.records[rec.GetID()]
	if !ok || stored.AuditInfo().IsDeleted() {
		return outbound.ErrNotFound
	}

	updated := r.clone(rec)
	// creation and deletion stamps are not writable through Update
	ua, sa := updated.AuditInfo(), stored.AuditInfo()
	ua.CreatedBy = sa.CreatedBy
	ua.CreatedAt = sa.CreatedAt
	ua.DeletedBy = nil
	ua.DeletedAt = nil

	r.records[rec.GetID()] = updated
	return nil
}

func (r *Repository[T]) SoftDelete(ctx context.Context, id, actorID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.records[id]
	if !ok || stored.AuditInfo().IsDeleted() {
		return outbound.ErrNotFound
	}

	stored.AuditInfo().MarkDeleted(actorID, at)
	return nil
}

func (r *Repository[T]) FindAll(ctx context.Context, offset, limit int, filters outbound.ListFilters) ([]T, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(filters.Name)
	matched := make([]T, 0)
	for _, rec := range r.records {
		a := rec.AuditInfo()
		if a.IsDeleted() || a.CreatedBy != filters.OwnerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(rec.GetName()), needle) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		ai, aj := matched[i].AuditInfo(), matched[j].AuditInfo()
		if !ai.CreatedAt.Equal(aj.CreatedAt) {
			return ai.CreatedAt.After(aj.CreatedAt)
		}
		return matched[i].GetID() > matched[j].GetID()
	})

	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit >= 0 && offset+limit < total {
		end = offset + limit
	}

	page := make([]T, 0, end-offset)
	for _, rec := range matched[offset:end] {
		page = append(page, r.clone(rec))
	}
	return page, total, nil
}
