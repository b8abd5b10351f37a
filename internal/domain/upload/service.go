package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/imaging"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/metrics"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/storage"
)

// Service validates, normalizes and stores uploaded images.
type Service struct {
	storage   storage.Storage
	processor *imaging.Processor
	maxSize   int64
}

// NewService creates upload service
func NewService(st storage.Storage, processor *imaging.Processor) *Service {
	return &Service{storage: st, processor: processor, maxSize: storage.MaxImageSize}
}

// Upload stores one image under uploads/<user>/<folder>/<id>.<ext>.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, folder Folder, r io.Reader) (*Asset, error) {
	if !folder.Valid() {
		return nil, ErrInvalidFolder
	}

	data, _, err := storage.ValidateFile(r, storage.AllowedImageTypes, s.maxSize)
	if err != nil {
		return nil, mapValidationError(err)
	}

	img, err := s.processor.Normalize(data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return nil, ErrFileType
		}
		return nil, fmt.Errorf("normalize image: %w", err)
	}

	id := uuid.New().String()
	key := fmt.Sprintf("uploads/%s/%s/%s%s", userID, folder, id, storage.GetExtensionForMime(img.ContentType))
	if err := s.storage.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType); err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("storage", "put").Inc()
		log.Error().Err(err).Str("external_service", "storage").Str("key", key).Msg("Upload to object storage failed")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("key", key).
		Int("bytes", len(img.Data)).
		Bool("resized", img.Resized).
		Msg("Image uploaded")

	return &Asset{
		ID:     id,
		Key:    key,
		URL:    s.storage.GetURL(key),
		Width:  img.Width,
		Height: img.Height,
		Bytes:  len(img.Data),
		Format: img.Format,
	}, nil
}

func mapValidationError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return ErrFileTooLarge
	case errors.Is(err, storage.ErrInvalidMimeType):
		return ErrFileType
	case errors.Is(err, storage.ErrEmptyFile):
		return ErrFileEmpty
	default:
		return fmt.Errorf("read upload: %w", err)
	}
}
