package job

import (
	"time"

	"github.com/google/uuid"
)

// SetSavedRequest is the body of PATCH /jobs/{id}/saved
type SetSavedRequest struct {
	Saved *bool `json:"saved" validate:"required"`
}

// Response is the public view of a job.
type Response struct {
	ID               uuid.UUID  `json:"id"`
	Category         Category   `json:"category"`
	ObjectImageURL   string     `json:"object_image_url"`
	MaterialImageURL string     `json:"material_image_url"`
	Prompt           string     `json:"prompt"`
	OutputImageURL   string     `json:"output_image_url,omitempty"`
	Status           Status     `json:"status"`
	Saved            bool       `json:"saved"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func ResponseFromEntity(j *Job) Response {
	resp := Response{
		ID:               j.ID,
		Category:         j.Category,
		ObjectImageURL:   j.ObjectImageURL,
		MaterialImageURL: j.MaterialImageURL,
		Prompt:           j.Prompt,
		OutputImageURL:   j.OutputImageURL.String,
		Status:           j.Status,
		Saved:            j.Saved,
		ErrorMessage:     j.ErrorMessage.String,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
	if j.CompletedAt.Valid {
		t := j.CompletedAt.Time
		resp.CompletedAt = &t
	}
	return resp
}

func ResponsesFromEntities(items []Job) []Response {
	out := make([]Response, 0, len(items))
	for i := range items {
		out = append(out, ResponseFromEntity(&items[i]))
	}
	return out
}
