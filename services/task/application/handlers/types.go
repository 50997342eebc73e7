// Package handlers contains one HTTP handler per task endpoint.
package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

// TaskResponse is the JSON representation of a task returned by all endpoints.
type TaskResponse struct {
	ID                uuid.UUID  `json:"id"                 example:"123e4567-e89b-12d3-a456-426614174000"`
	UserID            string     `json:"user_id"            example:"user_2x8kNq"`
	Title             string     `json:"title"              example:"Buy groceries"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"             example:"pending"`
	Priority          string     `json:"priority"           example:"medium"`
	Tags              []string   `json:"tags"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	RecurringPattern  string     `json:"recurring_pattern"  example:"none"`
	RecurringInterval int        `json:"recurring_interval" example:"1"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
} // @name TaskResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"task not found"`
} // @name ErrorResponse

func toTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:                t.ID,
		UserID:            t.UserID,
		Title:             t.Title.String(),
		Description:       t.Description,
		Status:            string(t.Status),
		Priority:          string(t.Priority),
		Tags:              t.Tags,
		DueDate:           t.DueDate,
		RecurringPattern:  string(t.RecurringPattern),
		RecurringInterval: t.RecurringInterval,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
