package repositories

import (
	"context"

	"github.com/BaselHussain/q4-hackathon-project-phase5/services/audit/domain/models"
)

// AuditRepository is the persistence interface for audit records.
// The domain layer owns this interface; infrastructure implements it.
type AuditRepository interface {
	// Insert writes an audit record. A record whose event id was already
	// written is silently skipped; Insert reports whether a row was added.
	Insert(ctx context.Context, entry *models.AuditLog) (bool, error)

	// FindByTaskID returns the audit trail for one task, oldest first.
	FindByTaskID(ctx context.Context, taskID string, limit int) ([]*models.AuditLog, error)
}
