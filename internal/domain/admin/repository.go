package admin

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists the admin audit trail.
type Repository interface {
	CreateAuditLog(ctx context.Context, entry *AuditLog) error
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditLog, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const auditColumns = `id, admin_id, action, entity_type, entity_id, old_value, new_value,
	reason, ip_address, user_agent, created_at`

func (r *repository) CreateAuditLog(ctx context.Context, entry *AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, admin_id, action, entity_type, entity_id, old_value, new_value, reason, ip_address, user_agent)
		VALUES (:id, :admin_id, :action, :entity_type, :entity_id, :old_value, :new_value, :reason, :ip_address, :user_agent)
		RETURNING created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("admin repository create audit log: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&entry.CreatedAt); err != nil {
			return fmt.Errorf("admin repository create audit log: %w", err)
		}
	}
	return rows.Err()
}

func (r *repository) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.AdminID != nil {
		query += fmt.Sprintf(" AND admin_id = $%d", argNum)
		args = append(args, *filter.AdminID)
		argNum++
	}
	if filter.EntityID != nil {
		query += fmt.Sprintf(" AND entity_id = $%d", argNum)
		args = append(args, *filter.EntityID)
		argNum++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argNum)
		args = append(args, filter.Action)
		argNum++
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", argNum)
		args = append(args, filter.EntityType)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	items := []AuditLog{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("admin repository list audit logs: %w", err)
	}
	return items, nil
}
