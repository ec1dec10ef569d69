package resource_management

import (
	"context"
	"errors"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	apperror "github.com/fixora/resourcesvc/domain/error"
)

func success(data interface{}) inbound.Result {
	return inbound.Result{
		Code:    apperror.CodeSuccess,
		Message: messageFor(apperror.CodeSuccess),
		Data:    data,
	}
}

func failure(code apperror.ResultCode) inbound.Result {
	return inbound.Result{Code: code, Message: messageFor(code)}
}

// rejected turns a request-level error into a result. Details are safe to
// show to the caller.
func rejected(err *apperror.AppError) inbound.Result {
	msg := messageFor(err.Code)
	if err.Details != "" {
		msg += ": " + err.Details
	}
	return inbound.Result{Code: err.Code, Message: msg}
}

// fromError maps a service error to a result. fallback is the code used for
// errors that carry none of their own. Not-found is expected traffic and
// logged at debug; everything else is an error.
func fromError(ctx context.Context, log outbound.Logger, op string, err error, fallback apperror.ResultCode, fields map[string]interface{}) inbound.Result {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["operation"] = op

	if errors.Is(err, outbound.ErrNotFound) {
		log.Debug(ctx, "Resource not found", fields)
		return failure(apperror.CodeNotFound)
	}

	code := apperror.CodeOf(err, fallback)
	fields["code"] = string(code)
	log.Error(ctx, "Resource operation failed", err, fields)
	return failure(code)
}
