package resource_management

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/application/usecase/crud"
	"github.com/fixora/resourcesvc/domain/entity"
	apperror "github.com/fixora/resourcesvc/domain/error"
	"github.com/fixora/resourcesvc/infrastructure/adapter/memory"
	"github.com/fixora/resourcesvc/infrastructure/http/validator"
	"github.com/fixora/resourcesvc/infrastructure/service/logger"
)

type MockResourceService struct {
	mock.Mock
}

func (m *MockResourceService) Create(ctx context.Context, rec *entity.Resource, actorID string) (*entity.Resource, error) {
	args := m.Called(ctx, rec, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Resource), args.Error(1)
}

func (m *MockResourceService) GetByID(ctx context.Context, id string) (*entity.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Resource), args.Error(1)
}

func (m *MockResourceService) List(ctx context.Context, page crud.Page, filters outbound.ListFilters) (*crud.ListResult[*entity.Resource], error) {
	args := m.Called(ctx, page, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crud.ListResult[*entity.Resource]), args.Error(1)
}

func (m *MockResourceService) UpdateByID(ctx context.Context, id string, patch entity.Patch[*entity.Resource], actorID string) (*entity.Resource, error) {
	args := m.Called(ctx, id, patch, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Resource), args.Error(1)
}

func (m *MockResourceService) DeleteByID(ctx context.Context, id, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordOperation(operation, code string, duration time.Duration) {
	m.Called(operation, code)
}

func strPtr(s string) *string { return &s }

func newMockedUseCase() (inbound.ResourceManagementUseCase, *MockResourceService) {
	svc := new(MockResourceService)
	return NewResourceManagementUseCase(svc, validator.New(), logger.NewNopLogger(), nil), svc
}

func TestGetResource(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		res := &entity.Resource{ID: "r-1", Name: "Algebra"}
		svc.On("GetByID", ctx, "r-1").Return(res, nil)

		result := uc.GetResource(ctx, "r-1")

		assert.Equal(t, apperror.CodeSuccess, result.Code)
		assert.Same(t, res, result.Data)
		assert.True(t, result.OK())
	})

	t.Run("not found", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		svc.On("GetByID", ctx, "missing").Return(nil, outbound.ErrNotFound)

		result := uc.GetResource(ctx, "missing")

		assert.Equal(t, apperror.CodeNotFound, result.Code)
		assert.Equal(t, "Resource not found", result.Message)
		assert.Nil(t, result.Data)
	})

	t.Run("empty id", func(t *testing.T) {
		uc, svc := newMockedUseCase()

		result := uc.GetResource(ctx, "")

		assert.Equal(t, apperror.CodeInvalidParams, result.Code)
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("read failure", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		svc.On("GetByID", ctx, "r-1").Return(nil, apperror.ErrQueryFailed("id=r-1", errors.New("timeout")))

		result := uc.GetResource(ctx, "r-1")

		assert.Equal(t, apperror.CodeQueryFailed, result.Code)
	})
}

func TestUpsertResource_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		created := &entity.Resource{ID: "r-1", Name: "Algebra"}
		svc.On("Create", ctx, mock.MatchedBy(func(r *entity.Resource) bool {
			return r.Name == "Algebra" && r.ID == ""
		}), "u1").Return(created, nil)

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("Algebra")}, "u1")

		assert.Equal(t, apperror.CodeSuccess, result.Code)
		assert.Same(t, created, result.Data)
		svc.AssertExpectations(t)
	})

	t.Run("write failure", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		svc.On("Create", ctx, mock.Anything, "u1").Return(nil, apperror.ErrCreateFailed("", errors.New("disk full")))

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("Algebra")}, "u1")

		assert.Equal(t, apperror.CodeCreateFailed, result.Code)
		assert.Equal(t, "Failed to create resource", result.Message)
	})

	t.Run("unclassified failure falls back to create failed", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		svc.On("Create", ctx, mock.Anything, "u1").Return(nil, errors.New("boom"))

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("Algebra")}, "u1")

		assert.Equal(t, apperror.CodeCreateFailed, result.Code)
	})

	t.Run("name required", func(t *testing.T) {
		uc, svc := newMockedUseCase()

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{}, "u1")

		assert.Equal(t, apperror.CodeInvalidParams, result.Code)
		assert.Contains(t, result.Message, "name is required")
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("name too long or empty", func(t *testing.T) {
		uc, _ := newMockedUseCase()
		long := make([]byte, 256)
		for i := range long {
			long[i] = 'a'
		}

		assert.Equal(t, apperror.CodeInvalidParams, uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr(string(long))}, "u1").Code)
		assert.Equal(t, apperror.CodeInvalidParams, uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("")}, "u1").Code)

		blank := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("   ")}, "u1")
		assert.Equal(t, apperror.CodeInvalidParams, blank.Code)
		assert.Equal(t, "Invalid parameters: name must not be blank", blank.Message)
	})

	t.Run("missing actor", func(t *testing.T) {
		uc, svc := newMockedUseCase()

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("Algebra")}, "")

		assert.Equal(t, apperror.CodeUnauthorized, result.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpsertResource_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("looks up by the resource id", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		updated := &entity.Resource{ID: "r-1", Name: "Geometry"}
		svc.On("UpdateByID", ctx, "r-1", entity.ResourcePatch{Name: strPtr("Geometry")}, "u1").Return(updated, nil)

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{ID: "r-1", Name: strPtr("Geometry")}, "u1")

		assert.Equal(t, apperror.CodeSuccess, result.Code)
		svc.AssertExpectations(t)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		svc.On("UpdateByID", ctx, "missing", mock.Anything, "u1").Return(nil, outbound.ErrNotFound)

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{ID: "missing", Name: strPtr("x")}, "u1")

		assert.Equal(t, apperror.CodeNotFound, result.Code)
	})

	t.Run("write failure", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		svc.On("UpdateByID", ctx, "r-1", mock.Anything, "u1").Return(nil, apperror.ErrUpdateFailed("", errors.New("deadlock")))

		result := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{ID: "r-1"}, "u1")

		assert.Equal(t, apperror.CodeUpdateFailed, result.Code)
	})
}

func TestListResources(t *testing.T) {
	ctx := context.Background()

	t.Run("success carries page info", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		items := []*entity.Resource{{ID: "r-2"}, {ID: "r-1"}}
		svc.On("List", ctx, crud.Page{Num: 2, Size: 2}, outbound.ListFilters{OwnerID: "u1", Name: "alg"}).
			Return(&crud.ListResult[*entity.Resource]{Items: items, Total: 4, Page: crud.Page{Num: 2, Size: 2}}, nil)

		result := uc.ListResources(ctx, inbound.ListResourcesRequest{
			Page: inbound.PageInput{PageNum: 2, PageSize: 2},
			Name: "alg",
		}, "u1")

		assert.Equal(t, apperror.CodeSuccess, result.Code)
		assert.Equal(t, items, result.Data)
		require.NotNil(t, result.Page)
		assert.Equal(t, inbound.PageInfo{PageNum: 2, PageSize: 2, Total: 4}, *result.Page)
	})

	t.Run("read failure", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		svc.On("List", ctx, mock.Anything, mock.Anything).Return(nil, apperror.ErrQueryFailed("", errors.New("timeout")))

		result := uc.ListResources(ctx, inbound.ListResourcesRequest{}, "u1")

		assert.Equal(t, apperror.CodeQueryFailed, result.Code)
		assert.Nil(t, result.Page)
	})

	t.Run("missing actor", func(t *testing.T) {
		uc, _ := newMockedUseCase()
		assert.Equal(t, apperror.CodeUnauthorized, uc.ListResources(ctx, inbound.ListResourcesRequest{}, "").Code)
	})
}

func TestDeleteResource(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		wantCode apperror.ResultCode
	}{
		{"success", nil, apperror.CodeSuccess},
		{"not found", outbound.ErrNotFound, apperror.CodeNotFound},
		{"write failure", apperror.ErrDeleteFailed("", errors.New("tx aborted")), apperror.CodeDeleteFailed},
		{"unclassified failure", errors.New("boom"), apperror.CodeDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, svc := newMockedUseCase()
			svc.On("DeleteByID", ctx, "r-1", "u1").Return(tt.err)

			result := uc.DeleteResource(ctx, "r-1", "u1")

			assert.Equal(t, tt.wantCode, result.Code)
			assert.Nil(t, result.Data)
		})
	}

	t.Run("empty id", func(t *testing.T) {
		uc, svc := newMockedUseCase()
		assert.Equal(t, apperror.CodeInvalidParams, uc.DeleteResource(ctx, "", "u1").Code)
		svc.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOperationsAreRecorded(t *testing.T) {
	ctx := context.Background()
	svc := new(MockResourceService)
	rec := new(MockRecorder)
	uc := NewResourceManagementUseCase(svc, validator.New(), logger.NewNopLogger(), rec)

	svc.On("GetByID", ctx, "missing").Return(nil, outbound.ErrNotFound)
	svc.On("DeleteByID", ctx, "r-1", "u1").Return(nil)
	rec.On("RecordOperation", "get", "NOT_FOUND").Once()
	rec.On("RecordOperation", "delete", "SUCCESS").Once()
	rec.On("RecordOperation", "create", "UNAUTHORIZED").Once()

	uc.GetResource(ctx, "missing")
	uc.DeleteResource(ctx, "r-1", "u1")
	uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("x")}, "")

	rec.AssertExpectations(t)
}

// End-to-end over the real service and the in-memory store.
func TestResourceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := crud.NewService[*entity.Resource](memory.NewRepository((*entity.Resource).Clone), crud.Options{})
	uc := NewResourceManagementUseCase(svc, validator.New(), logger.NewNopLogger(), nil)

	created := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{Name: strPtr("Algebra")}, "u1")
	require.Equal(t, apperror.CodeSuccess, created.Code)
	id := created.Data.(*entity.Resource).ID

	got := uc.GetResource(ctx, id)
	require.Equal(t, apperror.CodeSuccess, got.Code)
	assert.Equal(t, "u1", got.Data.(*entity.Resource).CreatedBy)

	// update with no name keeps the name
	updated := uc.UpsertResource(ctx, inbound.UpsertResourceRequest{ID: id}, "u2")
	require.Equal(t, apperror.CodeSuccess, updated.Code)
	assert.Equal(t, "Algebra", updated.Data.(*entity.Resource).Name)

	list := uc.ListResources(ctx, inbound.ListResourcesRequest{Page: inbound.PageInput{PageNum: 1, PageSize: 10}}, "u1")
	require.Equal(t, apperror.CodeSuccess, list.Code)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, 1, list.Page.Total)

	other := uc.ListResources(ctx, inbound.ListResourcesRequest{Page: inbound.PageInput{PageNum: 1, PageSize: 10}}, "u2")
	assert.Equal(t, 0, other.Page.Total)

	require.Equal(t, apperror.CodeSuccess, uc.DeleteResource(ctx, id, "u1").Code)

	got = uc.GetResource(ctx, id)
	require.Equal(t, apperror.CodeSuccess, got.Code)
	assert.NotNil(t, got.Data.(*entity.Resource).DeletedAt)

	list = uc.ListResources(ctx, inbound.ListResourcesRequest{Page: inbound.PageInput{PageNum: 1, PageSize: 10}}, "u1")
	assert.Equal(t, 0, list.Page.Total)

	assert.Equal(t, apperror.CodeNotFound, uc.DeleteResource(ctx, id, "u1").Code)
	assert.Equal(t, apperror.CodeNotFound, uc.UpsertResource(ctx, inbound.UpsertResourceRequest{ID: id, Name: strPtr("x")}, "u1").Code)
}
