package postgres

import (
	"context"
	"fmt"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/database"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/audit/domain/models"
)

// AuditRepository implements repositories.AuditRepository against PostgreSQL.
// The unique index on event_id plus ON CONFLICT DO NOTHING makes Insert
// idempotent, so redelivered events never produce duplicate rows.
type AuditRepository struct {
	db *database.Database
}

// NewAuditRepository returns an AuditRepository backed by the given connection pool.
func NewAuditRepository(database *database.Database) *AuditRepository {
	return &AuditRepository{db: database}
}

// Insert writes an audit record, skipping duplicates by event id.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) (bool, error) {
	res, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO audit_logs (event_id, event_type, task_id, user_id, action, sequence, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING`,
		entry.EventID, entry.EventType, entry.TaskID, entry.UserID,
		entry.Action, entry.Sequence, []byte(entry.Payload), entry.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert audit log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("audit log rows affected: %w", err)
	}
	return n > 0, nil
}

// FindByTaskID returns the audit trail for one task, oldest first.
func (r *AuditRepository) FindByTaskID(ctx context.Context, taskID string, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT event_id, event_type, task_id, user_id, action, sequence, payload, created_at
		FROM audit_logs WHERE task_id = $1 ORDER BY created_at ASC LIMIT $2`,
		taskID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var out []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		var payload []byte
		if err := rows.Scan(
			&entry.EventID, &entry.EventType, &entry.TaskID, &entry.UserID,
			&entry.Action, &entry.Sequence, &payload, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entry.Payload = payload
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return out, nil
}
