package resource_management

import (
	"context"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	apperror "github.com/fixora/resourcesvc/domain/error"
)

type GetResourceUseCase struct {
	svc    ResourceService
	logger outbound.Logger
}

func NewGetResourceUseCase(svc ResourceService, log outbound.Logger) *GetResourceUseCase {
	return &GetResourceUseCase{
		svc:    svc,
		logger: log,
	}
}

// Execute returns the resource, soft-deleted or not.
func (uc *GetResourceUseCase) Execute(ctx context.Context, id string) inbound.Result {
	if id == "" {
		return rejected(apperror.ErrInvalidParams("id is required"))
	}

	res, err := uc.svc.GetByID(ctx, id)
	if err != nil {
		return fromError(ctx, uc.logger, "get", err, apperror.CodeQueryFailed, map[string]interface{}{
			"resource_id": id,
		})
	}

	return success(res)
}
