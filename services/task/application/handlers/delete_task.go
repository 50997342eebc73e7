package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/errhttp"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	appsvcs "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/application/services"
)

// DeleteTaskHandler handles DELETE /tasks/{id} requests.
type DeleteTaskHandler struct {
	svc *appsvcs.Services
}

// NewDeleteTaskHandler returns a DeleteTaskHandler backed by the given services.
func NewDeleteTaskHandler(svc *appsvcs.Services) *DeleteTaskHandler {
	return &DeleteTaskHandler{svc: svc}
}

// Execute deletes a task.
//
//	@Summary		Delete task
//	@Description	Deletes a task owned by the authenticated user
//	@Tags			tasks
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Task id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/tasks/{id} [delete]
func (h *DeleteTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.svc.Task.Delete(r.Context(), userID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
