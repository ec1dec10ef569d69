package inbound

import (
	"context"

	apperror "github.com/fixora/resourcesvc/domain/error"
)

// Result is the uniform envelope every endpoint operation returns.
type Result struct {
	Code    apperror.ResultCode `json:"code"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Page    *PageInfo           `json:"page,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Code == apperror.CodeSuccess
}

// Upsert Resource
// An empty ID selects the create path, a non-empty ID the update path.
type UpsertResourceRequest struct {
	ID   string  `json:"id,omitempty" validate:"omitempty,max=64"`
	Name *string `json:"name" validate:"omitnil,notblank,max=255"`
}

// List Resources
type PageInput struct {
	PageNum  int `json:"pageNum"`
	PageSize int `json:"pageSize"`
}

type ListResourcesRequest struct {
	Page PageInput `json:"page"`
	Name string    `json:"name,omitempty" validate:"max=255"`
}

type PageInfo struct {
	PageNum  int `json:"pageNum"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// Resource Management Use Case Interface
type ResourceManagementUseCase interface {
	GetResource(ctx context.Context, id string) Result
	UpsertResource(ctx context.Context, req UpsertResourceRequest, actorID string) Result
	ListResources(ctx context.Context, req ListResourcesRequest, actorID string) Result
	DeleteResource(ctx context.Context, id, actorID string) Result
}
