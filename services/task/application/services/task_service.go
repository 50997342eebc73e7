package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	taskdomain "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/repositories"
)

// CreateParams carries the caller-supplied fields for a new task.
// Zero values take domain defaults (medium priority, no recurrence).
type CreateParams struct {
	Title             string
	Description       string
	Priority          string
	Tags              []string
	DueDate           *time.Time
	RecurringPattern  string
	RecurringInterval int
}

// UpdateParams carries a partial update. Nil pointers mean "leave unchanged".
type UpdateParams struct {
	Title             *string
	Description       *string
	Priority          *string
	Tags              []string
	DueDate           *time.Time
	ClearDueDate      bool
	RecurringPattern  *string
	RecurringInterval *int
}

// TaskService orchestrates task CRUD. Every successful mutation hands the
// committed state to the EventRouter, which publishes asynchronously so event
// transport problems never fail the request.
type TaskService struct {
	repo   repositories.TaskRepository
	router EventDispatcher
}

// NewTaskService returns a TaskService wired with the given repository and router.
func NewTaskService(repo repositories.TaskRepository, router EventDispatcher) *TaskService {
	return &TaskService{repo: repo, router: router}
}

// Create validates and persists a new pending task, then publishes created events.
func (s *TaskService) Create(ctx context.Context, userID string, params CreateParams) (*models.Task, error) {
	title, err := models.NewTaskTitle(params.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", taskdomain.ErrInvalidTaskTitle, err)
	}

	task := models.NewTask(userID, title)
	if len(params.Description) > models.MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description must not exceed %d characters",
			taskdomain.ErrInvalidTaskField, models.MaxDescriptionLength)
	}
	task.Description = params.Description
	if params.Tags != nil {
		task.Tags = params.Tags
	}
	task.DueDate = params.DueDate

	if params.Priority != "" {
		p := models.TaskPriority(params.Priority)
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", taskdomain.ErrInvalidTaskField, params.Priority)
		}
		task.Priority = p
	}
	if params.RecurringPattern != "" {
		rp := models.RecurringPattern(params.RecurringPattern)
		if !rp.Valid() {
			return nil, fmt.Errorf("%w: unknown recurring pattern %q", taskdomain.ErrInvalidTaskField, params.RecurringPattern)
		}
		task.RecurringPattern = rp
	}
	if params.RecurringInterval > 0 {
		task.RecurringInterval = params.RecurringInterval
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	s.dispatch(ctx, func(ctx context.Context) { s.router.TaskCreated(ctx, task) })
	return task, nil
}

// Get retrieves a task owned by userID. A task owned by someone else yields
// ErrTaskAccessDenied so the handler can answer 403 instead of 404.
func (s *TaskService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task.UserID != userID {
		return nil, taskdomain.ErrTaskAccessDenied
	}
	return task, nil
}

// List returns a filtered, paginated slice of the user's tasks plus total count.
func (s *TaskService) List(ctx context.Context, userID string, opts repositories.QueryOpts) ([]*models.Task, int, error) {
	tasks, total, err := s.repo.FindByUserID(ctx, userID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update applies a partial update to a task the user owns and publishes
// updated events listing the changed fields.
func (s *TaskService) Update(ctx context.Context, userID string, id uuid.UUID, params UpdateParams) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var changed []string
	dueDateChanged := false

	if params.Title != nil && *params.Title != task.Title.String() {
		title, err := models.NewTaskTitle(*params.Title)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", taskdomain.ErrInvalidTaskTitle, err)
		}
		task.Title = title
		changed = append(changed, "title")
	}
	if params.Description != nil && *params.Description != task.Description {
		if len(*params.Description) > models.MaxDescriptionLength {
			return nil, fmt.Errorf("%w: description must not exceed %d characters",
				taskdomain.ErrInvalidTaskField, models.MaxDescriptionLength)
		}
		task.Description = *params.Description
		changed = append(changed, "description")
	}
	if params.Priority != nil && *params.Priority != string(task.Priority) {
		p := models.TaskPriority(*params.Priority)
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", taskdomain.ErrInvalidTaskField, *params.Priority)
		}
		task.Priority = p
		changed = append(changed, "priority")
	}
	if params.Tags != nil {
		task.Tags = params.Tags
		changed = append(changed, "tags")
	}
	if params.ClearDueDate {
		if task.DueDate != nil {
			task.DueDate = nil
			changed = append(changed, "due_date")
			dueDateChanged = true
		}
	} else if params.DueDate != nil && !equalTimes(task.DueDate, params.DueDate) {
		task.DueDate = params.DueDate
		changed = append(changed, "due_date")
		dueDateChanged = true
	}
	if params.RecurringPattern != nil && *params.RecurringPattern != string(task.RecurringPattern) {
		rp := models.RecurringPattern(*params.RecurringPattern)
		if !rp.Valid() {
			return nil, fmt.Errorf("%w: unknown recurring pattern %q", taskdomain.ErrInvalidTaskField, *params.RecurringPattern)
		}
		task.RecurringPattern = rp
		changed = append(changed, "recurring_pattern")
	}
	if params.RecurringInterval != nil && *params.RecurringInterval != task.RecurringInterval {
		if *params.RecurringInterval < 1 {
			return nil, fmt.Errorf("%w: recurring interval must be positive", taskdomain.ErrInvalidTaskField)
		}
		task.RecurringInterval = *params.RecurringInterval
		changed = append(changed, "recurring_interval")
	}

	if len(changed) == 0 {
		return task, nil
	}

	task.Touch()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.dispatch(ctx, func(ctx context.Context) { s.router.TaskUpdated(ctx, task, changed, dueDateChanged) })
	return task, nil
}

// ToggleComplete flips the task between pending and completed. Completing a
// task publishes completed events; the recurring-task consumer generates the
// successor downstream.
func (s *TaskService) ToggleComplete(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	completed := !task.IsCompleted()
	if completed {
		task.Status = models.StatusCompleted
	} else {
		task.Status = models.StatusPending
	}
	task.Touch()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if completed {
		s.dispatch(ctx, func(ctx context.Context) { s.router.TaskCompleted(ctx, task) })
	} else {
		s.dispatch(ctx, func(ctx context.Context) { s.router.TaskReopened(ctx, task) })
	}
	return task, nil
}

// Delete removes a task the user owns and publishes deleted events carrying
// the last known state.
func (s *TaskService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	// Snapshot before delete so the event carries the final state.
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.dispatch(ctx, func(ctx context.Context) { s.router.TaskDeleted(ctx, task) })
	return nil
}

// dispatch runs fn on a detached context so event publishing continues after
// the HTTP response is written.
func (s *TaskService) dispatch(ctx context.Context, fn func(ctx context.Context)) {
	go fn(context.WithoutCancel(ctx))
}

func equalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
