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

// GetTaskHandler handles GET /tasks/{id} requests.
type GetTaskHandler struct {
	svc *appsvcs.Services
}

// NewGetTaskHandler returns a GetTaskHandler backed by the given services.
func NewGetTaskHandler(svc *appsvcs.Services) *GetTaskHandler {
	return &GetTaskHandler{svc: svc}
}

// Execute retrieves a single task.
//
//	@Summary		Get task
//	@Description	Returns one task owned by the authenticated user
//	@Tags			tasks
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Task id"
//	@Success		200	{object}	TaskResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/tasks/{id} [get]
func (h *GetTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	task, err := h.svc.Task.Get(r.Context(), userID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toTaskResponse(task))
}
