package admin

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AdjustCreditsRequest is the body of a manual credit adjustment.
type AdjustCreditsRequest struct {
	Amount         int64  `json:"amount" validate:"ne=0,gte=-1000000,lte=1000000"`
	Reason         string `json:"reason" validate:"required,min=3,max=500"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=100"`
}

// SetRoleRequest is the body of a role change.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,app_role"`
}

// BalanceResponse is a user's balance as seen by an admin.
type BalanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Credits int64     `json:"credits"`
}

// AuditLogResponse is the public view of an audit entry.
type AuditLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	AdminID    uuid.UUID       `json:"admin_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func AuditLogResponseFromEntity(a *AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         a.ID,
		AdminID:    a.AdminID,
		Action:     a.Action,
		EntityType: a.EntityType,
		Reason:     a.Reason.String,
		CreatedAt:  a.CreatedAt,
	}
	if a.EntityID.Valid {
		id := a.EntityID.UUID
		resp.EntityID = &id
	}
	if a.OldValue.Valid {
		resp.OldValue = json.RawMessage(a.OldValue.JSONText)
	}
	if a.NewValue.Valid {
		resp.NewValue = json.RawMessage(a.NewValue.JSONText)
	}
	return resp
}

func AuditLogResponsesFromEntities(items []AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(items))
	for i := range items {
		out = append(out, AuditLogResponseFromEntity(&items[i]))
	}
	return out
}
