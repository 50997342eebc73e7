package handlers

import (
	"net/http"
	"strconv"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/auth"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/errhttp"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	appsvcs "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/application/services"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/repositories"
)

// ListTasksResponse is returned by GET /tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total" example:"42"`
} // @name ListTasksResponse

// ListTasksHandler handles GET /tasks requests.
type ListTasksHandler struct {
	svc *appsvcs.Services
}

// NewListTasksHandler returns a ListTasksHandler backed by the given services.
func NewListTasksHandler(svc *appsvcs.Services) *ListTasksHandler {
	return &ListTasksHandler{svc: svc}
}

// Execute lists the authenticated user's tasks.
//
//	@Summary		List tasks
//	@Description	Returns a filtered, paginated list of the user's tasks
//	@Tags			tasks
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status		query		string	false	"Filter by status"		Enums(pending, completed)
//	@Param			priority	query		string	false	"Filter by priority"	Enums(low, medium, high)
//	@Param			limit		query		int		false	"Page size (default 50)"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	ListTasksResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Router			/tasks [get]
func (h *ListTasksHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	opts := repositories.QueryOpts{Limit: 50}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := models.TaskStatus(s)
		if !status.Valid() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "unknown status "+s)
			return
		}
		opts.Status = status
	}
	if p := q.Get("priority"); p != "" {
		priority := models.TaskPriority(p)
		if !priority.Valid() {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "unknown priority "+p)
			return
		}
		opts.Priority = priority
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			opts.Limit = n
		}
	}
	if o := q.Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	tasks, total, err := h.svc.Task.List(r.Context(), userID, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	httpx.JSON(w, http.StatusOK, ListTasksResponse{Tasks: out, Total: total})
}
