package resource_management

import (
	"context"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/application/usecase/crud"
	apperror "github.com/fixora/resourcesvc/domain/error"
)

type ListResourcesUseCase struct {
	svc      ResourceService
	validate RequestValidator
	logger   outbound.Logger
}

func NewListResourcesUseCase(svc ResourceService, validate RequestValidator, log outbound.Logger) *ListResourcesUseCase {
	return &ListResourcesUseCase{
		svc:      svc,
		validate: validate,
		logger:   log,
	}
}

// Execute lists the actor's live resources. The page echoed back is the
// normalized one actually served.
func (uc *ListResourcesUseCase) Execute(ctx context.Context, req inbound.ListResourcesRequest, actorID string) inbound.Result {
	if actorID == "" {
		return rejected(apperror.ErrUnauthorized(""))
	}
	if err := uc.validate.Struct(req); err != nil {
		return rejected(apperror.ErrInvalidParams(err.Error()))
	}

	page := crud.Page{Num: req.Page.PageNum, Size: req.Page.PageSize}
	filters := outbound.ListFilters{OwnerID: actorID, Name: req.Name}

	list, err := uc.svc.List(ctx, page, filters)
	if err != nil {
		return fromError(ctx, uc.logger, "list", err, apperror.CodeQueryFailed, map[string]interface{}{
			"actor_id": actorID,
		})
	}

	res := success(list.Items)
	res.Page = &inbound.PageInfo{
		PageNum:  list.Page.Num,
		PageSize: list.Page.Size,
		Total:    list.Total,
	}
	return res
}
