package resource_management

import (
	"context"
	"time"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/application/usecase/crud"
	"github.com/fixora/resourcesvc/domain/entity"
)

// ResourceService is the part of crud.Service the use cases depend on.
type ResourceService interface {
	Create(ctx context.Context, rec *entity.Resource, actorID string) (*entity.Resource, error)
	GetByID(ctx context.Context, id string) (*entity.Resource, error)
	List(ctx context.Context, page crud.Page, filters outbound.ListFilters) (*crud.ListResult[*entity.Resource], error)
	UpdateByID(ctx context.Context, id string, patch entity.Patch[*entity.Resource], actorID string) (*entity.Resource, error)
	DeleteByID(ctx context.Context, id, actorID string) error
}

// RequestValidator checks struct tags on request types.
type RequestValidator interface {
	Struct(s interface{}) error
}

// OperationRecorder receives one observation per use case call.
type OperationRecorder interface {
	RecordOperation(operation, code string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string, time.Duration) {}

type ResourceManagementUseCaseImpl struct {
	getResourceUseCase    *GetResourceUseCase
	upsertResourceUseCase *UpsertResourceUseCase
	listResourcesUseCase  *ListResourcesUseCase
	deleteResourceUseCase *DeleteResourceUseCase
	recorder              OperationRecorder
}

func NewResourceManagementUseCase(
	svc ResourceService,
	validate RequestValidator,
	log outbound.Logger,
	recorder OperationRecorder,
) inbound.ResourceManagementUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	log = log.WithFields(map[string]interface{}{"component": "resource_management"})

	return &ResourceManagementUseCaseImpl{
		getResourceUseCase:    NewGetResourceUseCase(svc, log),
		upsertResourceUseCase: NewUpsertResourceUseCase(svc, validate, log),
		listResourcesUseCase:  NewListResourcesUseCase(svc, validate, log),
		deleteResourceUseCase: NewDeleteResourceUseCase(svc, log),
		recorder:              recorder,
	}
}

func (uc *ResourceManagementUseCaseImpl) GetResource(ctx context.Context, id string) inbound.Result {
	start := time.Now()
	res := uc.getResourceUseCase.Execute(ctx, id)
	uc.recorder.RecordOperation("get", string(res.Code), time.Since(start))
	return res
}

func (uc *ResourceManagementUseCaseImpl) UpsertResource(ctx context.Context, req inbound.UpsertResourceRequest, actorID string) inbound.Result {
	start := time.Now()
	res := uc.upsertResourceUseCase.Execute(ctx, req, actorID)
	op := "update"
	if req.ID == "" {
		op = "create"
	}
	uc.recorder.RecordOperation(op, string(res.Code), time.Since(start))
	return res
}

func (uc *ResourceManagementUseCaseImpl) ListResources(ctx context.Context, req inbound.ListResourcesRequest, actorID string) inbound.Result {
	start := time.Now()
	res := uc.listResourcesUseCase.Execute(ctx, req, actorID)
	uc.recorder.RecordOperation("list", string(res.Code), time.Since(start))
	return res
}

func (uc *ResourceManagementUseCaseImpl) DeleteResource(ctx context.Context, id, actorID string) inbound.Result {
	start := time.Now()
	res := uc.deleteResourceUseCase.Execute(ctx, id, actorID)
	uc.recorder.RecordOperation("delete", string(res.Code), time.Since(start))
	return res
}
