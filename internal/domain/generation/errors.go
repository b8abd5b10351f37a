package generation

import (
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
)

var (
	// ErrGenerationFailed is returned when the generator call failed; the job is failed and refunded.
	ErrGenerationFailed = apperr.New(apperr.KindUpstream, i18n.MsgGenerationFailed, "image generation failed")
)
