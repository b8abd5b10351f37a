package job

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the job lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// transitions lists the forward edges of the state machine.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Category is the kind of surface the material is wrapped onto.
type Category string

const (
	CategoryVehicle     Category = "vehicle"
	CategoryFurniture   Category = "furniture"
	CategoryWall        Category = "wall"
	CategoryBuilding    Category = "building"
	CategoryElectronics Category = "electronics"
	CategoryBox         Category = "box"
	CategoryAutoTuning  Category = "auto_tuning"
	CategoryGeneralItem Category = "general_item"
)

var promptTemplates = map[Category]string{
	CategoryVehicle:     "Wrap the vehicle in the provided material as a professional vinyl wrap. Follow body panels, keep windows, lights, tires and badges unwrapped, preserve reflections and perspective.",
	CategoryFurniture:   "Upholster or laminate the furniture with the provided material. Respect seams, edges and cushions, keep legs and hardware unchanged.",
	CategoryWall:        "Apply the provided material to the wall surface as wallpaper or panel cladding. Keep outlets, frames and furniture in front of the wall untouched.",
	CategoryBuilding:    "Clad the building facade with the provided material. Keep windows, doors and surroundings unchanged and match the scene lighting.",
	CategoryElectronics: "Apply the provided material as a skin on the device. Leave screens, cameras, ports and buttons uncovered.",
	CategoryBox:         "Print the provided material onto the box faces as packaging artwork, wrapping cleanly over edges and folds.",
	CategoryAutoTuning:  "Apply the provided material to the vehicle as a partial tuning wrap on accents such as roof, mirrors, hood and trims, keeping the base paint elsewhere.",
	CategoryGeneralItem: "Wrap the object surface with the provided material, following its geometry while keeping the background unchanged.",
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryVehicle, CategoryFurniture, CategoryWall, CategoryBuilding,
		CategoryElectronics, CategoryBox, CategoryAutoTuning, CategoryGeneralItem,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := promptTemplates[c]
	return ok
}

// BuildPrompt joins the category template with caller instructions.
func BuildPrompt(c Category, extra string) string {
	prompt := promptTemplates[c]
	if extra = strings.TrimSpace(extra); extra != "" {
		prompt += " " + extra
	}
	return prompt
}

// Job is one generation request.
type Job struct {
	ID               uuid.UUID      `db:"id"`
	UserID           uuid.UUID      `db:"user_id"`
	Category         Category       `db:"category"`
	ObjectImageURL   string         `db:"object_image_url"`
	MaterialImageURL string         `db:"material_image_url"`
	Prompt           string         `db:"prompt"`
	OutputImageURL   sql.NullString `db:"output_image_url"`
	Status           Status         `db:"status"`
	Saved            bool           `db:"saved"`
	ErrorMessage     sql.NullString `db:"error_message"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	CompletedAt      sql.NullTime   `db:"completed_at"`
}

// Outcome carries the fields a transition may set.
type Outcome struct {
	OutputImageURL string
	ErrorMessage   string
}
