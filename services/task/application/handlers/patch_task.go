package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/errhttp"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	pkgvalidator "github.com/BaselHussain/q4-hackathon-project-phase5/pkg/validator"
	appsvcs "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/application/services"
)

// UpdateTaskRequest is the request body for PATCH /tasks/{id}.
// Omitted fields are left unchanged; clear_due_date removes the due date.
type UpdateTaskRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description       *string    `json:"description" validate:"omitempty,max=2000"`
	Priority          *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags              []string   `json:"tags"`
	DueDate           *time.Time `json:"due_date"`
	ClearDueDate      bool       `json:"clear_due_date"`
	RecurringPattern  *string    `json:"recurring_pattern" validate:"omitempty,oneof=none daily weekly monthly yearly"`
	RecurringInterval *int       `json:"recurring_interval" validate:"omitempty,gte=1"`
} // @name UpdateTaskRequest

// PatchTaskHandler handles PATCH /tasks/{id} requests.
type PatchTaskHandler struct {
	svc *appsvcs.Services
}

// NewPatchTaskHandler returns a PatchTaskHandler backed by the given services.
func NewPatchTaskHandler(svc *appsvcs.Services) *PatchTaskHandler {
	return &PatchTaskHandler{svc: svc}
}

// Execute applies a partial update to a task.
//
//	@Summary		Update task
//	@Description	Partially updates a task owned by the authenticated user
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Task id"
//	@Param			request	body		UpdateTaskRequest	true	"Fields to update"
//	@Success		200		{object}	TaskResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/tasks/{id} [patch]
func (h *PatchTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[UpdateTaskRequest](w, r)
	if !ok {
		return
	}

	task, err := h.svc.Task.Update(r.Context(), userID, id, appsvcs.UpdateParams{
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		Tags:              req.Tags,
		DueDate:           req.DueDate,
		ClearDueDate:      req.ClearDueDate,
		RecurringPattern:  req.RecurringPattern,
		RecurringInterval: req.RecurringInterval,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toTaskResponse(task))
}
