package user

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of application roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// NormalizeRole maps a freeform identity claim onto Role. Unknown or empty values become RoleUser.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleOwner:
		return RoleOwner
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleOwner
}

// Status represents user status
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// User is a local account mirrored from the identity provider.
// SignupBonusDue is the welcome credit still owed, zero once granted.
type User struct {
	ID             uuid.UUID    `db:"id"`
	ExternalID     string       `db:"external_id"`
	Email          string       `db:"email"`
	EmailVerified  bool         `db:"email_verified"`
	Name           string       `db:"name"`
	AvatarURL      string       `db:"avatar_url"`
	Role           Role         `db:"role"`
	Status         Status       `db:"status"`
	Credits        int64        `db:"credits"`
	LedgerVersion  int64        `db:"ledger_version"`
	SignupBonusDue int64        `db:"signup_bonus_due"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
	DeletedAt      sql.NullTime `db:"deleted_at"`
}

// IsDeleted returns true if the account was removed at the identity provider
func (u *User) IsDeleted() bool {
	return u.Status == StatusDeleted
}

// IsAdmin returns true for admins and owners
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleOwner
}

// Profile is the identity provider's view of a user.
// An empty RoleClaim means the provider did not send one. SignupBonus is stored
// as owed when the profile creates a new user.
type Profile struct {
	ExternalID    string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
	RoleClaim     string
	SignupBonus   int64
}
