package generation

// SubmitRequest is the body of POST /jobs
type SubmitRequest struct {
	Category         string `json:"category" validate:"required,wrap_category"`
	ObjectImageURL   string `json:"object_image_url" validate:"required,url,max=2048"`
	MaterialImageURL string `json:"material_image_url" validate:"required,url,max=2048"`
	Prompt           string `json:"prompt" validate:"max=1000"`
}
