package handlers

import (
	"net/http"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/errhttp"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	pkgvalidator "github.com/BaselHussain/q4-hackathon-project-phase5/pkg/validator"
	appsvcs "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/application/services"
)

// CreateTaskRequest is the request body for POST /tasks.
type CreateTaskRequest struct {
	Title             string     `json:"title" validate:"required,min=1,max=200" example:"Buy groceries"`
	Description       string     `json:"description" validate:"max=2000"`
	Priority          string     `json:"priority" validate:"omitempty,oneof=low medium high" example:"medium"`
	Tags              []string   `json:"tags"`
	DueDate           *time.Time `json:"due_date"`
	RecurringPattern  string     `json:"recurring_pattern" validate:"omitempty,oneof=none daily weekly monthly yearly" example:"none"`
	RecurringInterval int        `json:"recurring_interval" validate:"omitempty,gte=1" example:"1"`
} // @name CreateTaskRequest

// PostTaskHandler handles POST /tasks requests.
type PostTaskHandler struct {
	svc *appsvcs.Services
}

// NewPostTaskHandler returns a PostTaskHandler backed by the given services.
func NewPostTaskHandler(svc *appsvcs.Services) *PostTaskHandler {
	return &PostTaskHandler{svc: svc}
}

// Execute creates a new task.
//
//	@Summary		Create task
//	@Description	Creates a new pending task owned by the authenticated user
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateTaskRequest	true	"Task creation request"
//	@Success		201		{object}	TaskResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/tasks [post]
func (h *PostTaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateTaskRequest](w, r)
	if !ok {
		return
	}

	task, err := h.svc.Task.Create(r.Context(), userID, appsvcs.CreateParams{
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		Tags:              req.Tags,
		DueDate:           req.DueDate,
		RecurringPattern:  req.RecurringPattern,
		RecurringInterval: req.RecurringInterval,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toTaskResponse(task))
}
