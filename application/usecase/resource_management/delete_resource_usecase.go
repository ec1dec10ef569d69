package resource_management

import (
	"context"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	apperror "github.com/fixora/resourcesvc/domain/error"
)

type DeleteResourceUseCase struct {
	svc    ResourceService
	logger outbound.Logger
}

func NewDeleteResourceUseCase(svc ResourceService, log outbound.Logger) *DeleteResourceUseCase {
	return &DeleteResourceUseCase{
		svc:    svc,
		logger: log,
	}
}

// Execute soft-deletes the resource. The row stays readable by id.
func (uc *DeleteResourceUseCase) Execute(ctx context.Context, id, actorID string) inbound.Result {
	if actorID == "" {
		return rejected(apperror.ErrUnauthorized(""))
	}
	if id == "" {
		return rejected(apperror.ErrInvalidParams("id is required"))
	}

	if err := uc.svc.DeleteByID(ctx, id, actorID); err != nil {
		return fromError(ctx, uc.logger, "delete", err, apperror.CodeDeleteFailed, map[string]interface{}{
			"resource_id": id,
			"actor_id":    actorID,
		})
	}

	uc.logger.Info(ctx, "Resource deleted", map[string]interface{}{
		"resource_id": id,
		"actor_id":    actorID,
	})
	return success(nil)
}
