package user

import (
	"time"

	"github.com/google/uuid"
)

// MeResponse is the caller's profile and balance.
type MeResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Name          string    `json:"name"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Role          Role      `json:"role"`
	Credits       int64     `json:"credits"`
	CreatedAt     time.Time `json:"created_at"`
}

func MeResponseFromEntity(u *User) *MeResponse {
	return &MeResponse{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Name:          u.Name,
		AvatarURL:     u.AvatarURL,
		Role:          u.Role,
		Credits:       u.Credits,
		CreatedAt:     u.CreatedAt,
	}
}
