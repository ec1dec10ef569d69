package resource_management

import apperror "github.com/fixora/resourcesvc/domain/error"

var messages = map[apperror.ResultCode]string{
	apperror.CodeSuccess:       "OK",
	apperror.CodeNotFound:      "Resource not found",
	apperror.CodeCreateFailed:  "Failed to create resource",
	apperror.CodeUpdateFailed:  "Failed to update resource",
	apperror.CodeDeleteFailed:  "Failed to delete resource",
	apperror.CodeQueryFailed:   "Failed to query resources",
	apperror.CodeInvalidParams: "Invalid parameters",
	apperror.CodeUnauthorized:  "Authenticated actor required",
}

// messageFor returns the human-readable text paired with code.
func messageFor(code apperror.ResultCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return string(code)
}
