package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gosimple/slug"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/cms"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/metrics"
)

// Sources served by the content API.
const (
	SourcePages = "pages"
	SourcePosts = "posts"
)

var (
	ErrContentNotFound = apperr.New(apperr.KindNotFound, i18n.MsgContentNotFound, "content not found")
	ErrInvalidSlug     = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "invalid slug")
	ErrUpstream        = apperr.New(apperr.KindUpstream, i18n.MsgUpstreamFailure, "content backend failed")
)

// Service resolves documents from the configured CMS backends.
type Service struct {
	sources map[string]cms.Fetcher
}

// NewService creates content service. A nil fetcher leaves its source unavailable.
func NewService(pages, posts cms.Fetcher) *Service {
	sources := map[string]cms.Fetcher{}
	if pages != nil {
		sources[SourcePages] = pages
	}
	if posts != nil {
		sources[SourcePosts] = posts
	}
	return &Service{sources: sources}
}

// Get returns the raw document for source and slug.
func (s *Service) Get(ctx context.Context, source, documentSlug string) (json.RawMessage, error) {
	fetcher, ok := s.sources[source]
	if !ok {
		return nil, ErrContentNotFound
	}
	if !slug.IsSlug(documentSlug) {
		return nil, ErrInvalidSlug
	}

	doc, err := fetcher.Fetch(ctx, documentSlug)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		metrics.UpstreamErrorsTotal.WithLabelValues("cms_"+source, httpclient.Kind(err)).Inc()
		errorhandler.LogExternalServiceError(ctx, "cms_"+source, "fetch", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return doc, nil
}
