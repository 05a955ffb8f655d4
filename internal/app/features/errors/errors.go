// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Stable machine-readable error codes.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeValidationFailed = "validation_failed"
	CodeConflict         = "conflict"
	CodeServerError      = "server_error"
)

type body struct {
	Error payload `json:"error"`
}

type payload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func write(w http.ResponseWriter, status int, code, message string) {
	httpjson.Write(w, status, body{Error: payload{Code: code, Message: message}})
}

// Unauthenticated responds 401 for requests with no signed-in user.
func Unauthenticated(w http.ResponseWriter) {
	write(w, http.StatusUnauthorized, CodeUnauthenticated, "Sign in required.")
}

// PermissionDenied responds 403.
func PermissionDenied(w http.ResponseWriter, message string) {
	if message == "" {
		message = "You don't have permission to do that."
	}
	write(w, http.StatusForbidden, CodePermissionDenied, message)
}

// NotFound responds 404.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found."
	}
	write(w, http.StatusNotFound, CodeNotFound, message)
}

// ValidationFailed responds 400 with a human-readable message.
func ValidationFailed(w http.ResponseWriter, message string) {
	write(w, http.StatusBadRequest, CodeValidationFailed, message)
}

// Conflict responds 409.
func Conflict(w http.ResponseWriter, message string) {
	write(w, http.StatusConflict, CodeConflict, message)
}

// ServerError logs the cause and responds 500 without leaking it.
func ServerError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	logger.Error("request failed", zap.String("op", op), zap.Error(err))
	write(w, http.StatusInternalServerError, CodeServerError, "Something went wrong.")
}

// FromGuard translates guard errors into responses. Membership failures
// render as not-found so outsiders can't confirm workspace existence.
// Returns false for errors it does not recognize, which the caller
// should treat as server errors.
func FromGuard(w http.ResponseWriter, err error) bool {
	switch {
	case stderrors.Is(err, guard.ErrNotMember):
		NotFound(w, "Workspace not found.")
		return true
	case stderrors.Is(err, guard.ErrNotAdmin):
		PermissionDenied(w, "Admin role required.")
		return true
	}
	return false
}
