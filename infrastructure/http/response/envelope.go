package response

import (
	"encoding/json"
	"net/http"

	"github.com/fixora/resourcesvc/application/port/inbound"
	apperror "github.com/fixora/resourcesvc/domain/error"
)

func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(body)
}

// Result writes res with the HTTP status derived from its code.
func Result(w http.ResponseWriter, res inbound.Result) {
	WriteJSON(w, apperror.HTTPStatus(res.Code), res)
}

// ResultWithStatus writes res with an explicit status for successful calls,
// e.g. 201 after a create. Failures keep their mapped status.
func ResultWithStatus(w http.ResponseWriter, successStatus int, res inbound.Result) {
	if res.OK() {
		WriteJSON(w, successStatus, res)
		return
	}
	Result(w, res)
}

func Error(w http.ResponseWriter, statusCode int, code apperror.ResultCode, message string) {
	WriteJSON(w, statusCode, inbound.Result{Code: code, Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, apperror.CodeInvalidParams, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, apperror.CodeUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, apperror.CodeNotFound, message)
}

func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, apperror.CodeMethodNotAllowed, "Method not allowed")
}

func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, apperror.CodeRateLimited, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, apperror.CodeInternalError, message)
}
