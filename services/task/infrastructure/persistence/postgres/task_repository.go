package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/database"
	taskdomain "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/repositories"
)

// TaskRepository implements repositories.TaskRepository against PostgreSQL.
// Tags are stored as a JSONB array.
type TaskRepository struct {
	db *database.Database
}

// NewTaskRepository returns a TaskRepository backed by the given connection pool.
func NewTaskRepository(database *database.Database) *TaskRepository {
	return &TaskRepository{db: database}
}

const taskColumns = `id, user_id, title, description, status, priority, tags, due_date,
	recurring_pattern, recurring_interval, created_at, updated_at`

// Save persists a new Task. Returns ErrTaskAlreadyExists on duplicate ids.
func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.DB().ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		task.ID, task.UserID, task.Title.String(), task.Description,
		string(task.Status), string(task.Priority), tags, task.DueDate,
		string(task.RecurringPattern), task.RecurringInterval,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return taskdomain.ErrTaskAlreadyExists
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID retrieves a Task by ID regardless of owner. Returns ErrTaskNotFound
// if not found; the service layer compares UserID to decide 403 vs 404.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, taskdomain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// FindByUserID retrieves a filtered, paginated list of tasks and the total
// count for the given user.
func (r *TaskRepository) FindByUserID(ctx context.Context, userID string, opts repositories.QueryOpts) ([]*models.Task, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.Priority != "" {
		args = append(args, string(opts.Priority))
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE "+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	query := fmt.Sprintf(
		"SELECT "+taskColumns+" FROM tasks WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		cond, len(args)-1, len(args),
	)

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, total, nil
}

// Update persists changes to an existing Task, scoped to its owner.
// Returns ErrTaskNotFound if no row matched.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6, tags = $7,
			due_date = $8, recurring_pattern = $9, recurring_interval = $10,
			updated_at = $11
		WHERE id = $1 AND user_id = $2`,
		task.ID, task.UserID, task.Title.String(), task.Description,
		string(task.Status), string(task.Priority), tags, task.DueDate,
		string(task.RecurringPattern), task.RecurringInterval, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if n == 0 {
		return taskdomain.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by ID scoped to the given user.
// Returns ErrTaskNotFound if no row matched.
func (r *TaskRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := r.db.DB().ExecContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if n == 0 {
		return taskdomain.ErrTaskNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		task     models.Task
		title    string
		status   string
		priority string
		tags     []byte
		pattern  string
		dueDate  sql.NullTime
	)
	if err := s.Scan(
		&task.ID, &task.UserID, &title, &task.Description, &status, &priority,
		&tags, &dueDate, &pattern, &task.RecurringInterval,
		&task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Title = models.TaskTitle(title)
	task.Status = models.TaskStatus(status)
	task.Priority = models.TaskPriority(priority)
	task.RecurringPattern = models.RecurringPattern(pattern)
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return &task, nil
}
