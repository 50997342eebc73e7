// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	taskdomain "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	httpx.JSONError(w, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUserIDNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, taskdomain.ErrTaskAccessDenied):
		return http.StatusForbidden // 403
	case errors.Is(err, taskdomain.ErrTaskNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, taskdomain.ErrTaskAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, taskdomain.ErrInvalidTaskTitle),
		errors.Is(err, taskdomain.ErrInvalidTaskField):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
