package crud

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/domain/entity"
	apperror "github.com/fixora/resourcesvc/domain/error"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Num  int
	Size int
}

// Offset is the number of rows skipped before the page starts.
func (p Page) Offset() int {
	return (p.Num - 1) * p.Size
}

type ListResult[T entity.Record] struct {
	Items []T
	Total int
	Page  Page
}

type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Now             func() time.Time
	NewID           func() string
}

// Service implements create, read, list, update and soft-delete for one
// record type on top of an outbound repository. It holds no mutable state.
type Service[T entity.Record] struct {
	repo            outbound.Repository[T]
	now             func() time.Time
	newID           func() string
	defaultPageSize int
	maxPageSize     int
}

func NewService[T entity.Record](repo outbound.Repository[T], opts Options) *Service[T] {
	s := &Service[T]{
		repo:            repo,
		now:             opts.Now,
		newID:           opts.NewID,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.maxPageSize <= 0 {
		s.maxPageSize = MaxPageSize
	}
	if s.defaultPageSize <= 0 {
		s.defaultPageSize = DefaultPageSize
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// Create stamps the creating actor, assigns an ID when the record has none
// and persists it with a single write.
func (s *Service[T]) Create(ctx context.Context, rec T, actorID string) (T, error) {
	var zero T
	if rec.GetID() == "" {
		rec.SetID(s.newID())
	}
	rec.AuditInfo().MarkCreated(actorID, s.now())

	if err := s.repo.Create(ctx, rec); err != nil {
		return zero, apperror.ErrCreateFailed(fmt.Sprintf("id=%s", rec.GetID()), err)
	}
	return rec, nil
}

// GetByID looks a record up by exact ID. Soft-deleted records are returned
// with DeletedAt set.
func (s *Service[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, outbound.ErrNotFound
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrNotFound) {
			return zero, outbound.ErrNotFound
		}
		return zero, apperror.ErrQueryFailed(fmt.Sprintf("id=%s", id), err)
	}
	return rec, nil
}

// NormalizePage clamps a page request into the configured bounds.
func (s *Service[T]) NormalizePage(p Page) Page {
	if p.Num < 1 {
		p.Num = 1
	}
	if p.Size < 1 {
		p.Size = s.defaultPageSize
	}
	if p.Size > s.maxPageSize {
		p.Size = s.maxPageSize
	}
	// keep (Num-1)*Size from overflowing; such a page is past the end anyway
	if maxNum := math.MaxInt/p.Size + 1; p.Num > maxNum {
		p.Num = maxNum
	}
	return p
}

// List returns one page of live records owned by filters.OwnerID, newest first.
func (s *Service[T]) List(ctx context.Context, page Page, filters outbound.ListFilters) (*ListResult[T], error) {
	page = s.NormalizePage(page)

	items, total, err := s.repo.FindAll(ctx, page.Offset(), page.Size, filters)
	if err != nil {
		return nil, apperror.ErrQueryFailed(fmt.Sprintf("owner=%s", filters.OwnerID), err)
	}
	if items == nil {
		items = []T{}
	}

	return &ListResult[T]{Items: items, Total: total, Page: page}, nil
}

// UpdateByID overlays patch onto the stored record and persists the merge.
// Missing and soft-deleted records yield outbound.ErrNotFound without a write.
func (s *Service[T]) UpdateByID(ctx context.Context, id string, patch entity.Patch[T], actorID string) (T, error) {
	var zero T

	rec, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrNotFound) {
			return zero, err
		}
		return zero, apperror.ErrUpdateFailed(fmt.Sprintf("lookup id=%s", id), err)
	}
	if rec.AuditInfo().IsDeleted() {
		return zero, outbound.ErrNotFound
	}

	patch.ApplyTo(rec)
	rec.AuditInfo().MarkUpdated(actorID, s.now())

	if err := s.repo.Update(ctx, rec); err != nil {
		if errors.Is(err, outbound.ErrNotFound) {
			return zero, outbound.ErrNotFound
		}
		return zero, apperror.ErrUpdateFailed(fmt.Sprintf("id=%s", id), err)
	}
	return rec, nil
}

// DeleteByID soft-deletes a live record, recording actorID as the deleter.
func (s *Service[T]) DeleteByID(ctx context.Context, id, actorID string) error {
	if id == "" {
		return outbound.ErrNotFound
	}

	if err := s.repo.SoftDelete(ctx, id, actorID, s.now()); err != nil {
		if errors.Is(err, outbound.ErrNotFound) {
			return outbound.ErrNotFound
		}
		return apperror.ErrDeleteFailed(fmt.Sprintf("id=%s", id), err)
	}
	return nil
}
