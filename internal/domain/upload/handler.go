package upload

import (
	"net/http"

	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/storage"
)

// multipart overhead on top of the file limit
const maxRequestSize = storage.MaxImageSize + 1<<20

// Handler handles upload HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates upload handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST /uploads
// @Summary Upload an object or material image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image (jpeg, png, webp; max 10MB)"
// @Param folder formData string false "object or material"
// @Success 201 {object} response.Response{data=AssetResponse}
// @Failure 400,502 {object} response.Response
// @Router /uploads [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := r.ParseMultipartForm(maxRequestSize); err != nil {
		errorhandler.HandleError(w, r, ErrFileTooLarge)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgFileEmpty)
		return
	}
	defer file.Close()

	folder := Folder(r.FormValue("folder"))
	if folder == "" {
		folder = FolderObject
	}

	asset, err := h.service.Upload(r.Context(), middleware.GetUserID(r.Context()), folder, file)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.Created(w, AssetResponseFromEntity(asset))
}
