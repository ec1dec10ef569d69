package resource_management

import (
	"context"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/domain/entity"
	apperror "github.com/fixora/resourcesvc/domain/error"
)

type UpsertResourceUseCase struct {
	svc      ResourceService
	validate RequestValidator
	logger   outbound.Logger
}

func NewUpsertResourceUseCase(svc ResourceService, validate RequestValidator, log outbound.Logger) *UpsertResourceUseCase {
	return &UpsertResourceUseCase{
		svc:      svc,
		validate: validate,
		logger:   log,
	}
}

// Execute creates a resource when req.ID is empty and otherwise merges req
// into the live resource with that ID.
func (uc *UpsertResourceUseCase) Execute(ctx context.Context, req inbound.UpsertResourceRequest, actorID string) inbound.Result {
	if actorID == "" {
		return rejected(apperror.ErrUnauthorized(""))
	}
	if err := uc.validate.Struct(req); err != nil {
		return rejected(apperror.ErrInvalidParams(err.Error()))
	}

	if req.ID == "" {
		return uc.create(ctx, req, actorID)
	}
	return uc.update(ctx, req, actorID)
}

func (uc *UpsertResourceUseCase) create(ctx context.Context, req inbound.UpsertResourceRequest, actorID string) inbound.Result {
	if req.Name == nil {
		return rejected(apperror.ErrInvalidParams("name is required"))
	}

	created, err := uc.svc.Create(ctx, entity.NewResource(*req.Name), actorID)
	if err != nil {
		return fromError(ctx, uc.logger, "create", err, apperror.CodeCreateFailed, map[string]interface{}{
			"actor_id": actorID,
		})
	}

	uc.logger.Info(ctx, "Resource created", map[string]interface{}{
		"resource_id": created.ID,
		"actor_id":    actorID,
	})
	return success(created)
}

func (uc *UpsertResourceUseCase) update(ctx context.Context, req inbound.UpsertResourceRequest, actorID string) inbound.Result {
	patch := entity.ResourcePatch{Name: req.Name}

	updated, err := uc.svc.UpdateByID(ctx, req.ID, patch, actorID)
	if err != nil {
		return fromError(ctx, uc.logger, "update", err, apperror.CodeUpdateFailed, map[string]interface{}{
			"resource_id": req.ID,
			"actor_id":    actorID,
		})
	}

	uc.logger.Info(ctx, "Resource updated", map[string]interface{}{
		"resource_id": updated.ID,
		"actor_id":    actorID,
	})
	return success(updated)
}
