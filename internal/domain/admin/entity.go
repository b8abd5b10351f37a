package admin

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Audit actions
const (
	ActionCreditAdjust = "credit.adjust"
	ActionRoleChange   = "user.role"
)

// AuditLog represents an admin action log entry
type AuditLog struct {
	ID         uuid.UUID          `db:"id"`
	AdminID    uuid.UUID          `db:"admin_id"`
	Action     string             `db:"action"`
	EntityType string             `db:"entity_type"`
	EntityID   uuid.NullUUID      `db:"entity_id"`
	OldValue   types.NullJSONText `db:"old_value"`
	NewValue   types.NullJSONText `db:"new_value"`
	Reason     sql.NullString     `db:"reason"`
	IPAddress  sql.NullString     `db:"ip_address"`
	UserAgent  sql.NullString     `db:"user_agent"`
	CreatedAt  time.Time          `db:"created_at"`
}

// AuditFilter for listing audit logs
type AuditFilter struct {
	AdminID    *uuid.UUID
	EntityID   *uuid.UUID
	Action     string
	EntityType string
	Limit      int
	Offset     int
}

// Actor identifies the admin performing a request.
type Actor struct {
	ID        uuid.UUID
	IPAddress string
	UserAgent string
}
