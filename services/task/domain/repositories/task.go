package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

// QueryOpts contains filtering and pagination parameters for list queries.
type QueryOpts struct {
	Status   models.TaskStatus   // empty means all statuses
	Priority models.TaskPriority // empty means all priorities
	Limit    int                 // Maximum number of records to return
	Offset   int                 // Number of records to skip
}

// TaskRepository is the persistence interface for the Task aggregate.
// The domain layer owns this interface; infrastructure implements it.
type TaskRepository interface {
	Save(ctx context.Context, task *models.Task) error

	// GetByID retrieves a task regardless of owner. Callers compare UserID to
	// distinguish not-found from access-denied.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)

	// FindByUserID retrieves a paginated list of tasks for the given user.
	// Returns the tasks slice and the total count (ignoring pagination).
	FindByUserID(ctx context.Context, userID string, opts QueryOpts) ([]*models.Task, int, error)

	// Update persists changes to an existing Task.
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task by ID scoped to the given user.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}
