package job

import (
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
)

var (
	ErrJobNotFound       = apperr.New(apperr.KindNotFound, i18n.MsgJobNotFound, "job not found")
	ErrNotOwner          = apperr.New(apperr.KindForbidden, i18n.MsgForbidden, "job belongs to another user")
	ErrInvalidTransition = apperr.New(apperr.KindConflict, i18n.MsgInvalidTransition, "invalid job status transition")
	ErrInvalidCategory   = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "invalid category")
)
