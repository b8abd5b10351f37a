package upload

import (
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
)

var (
	ErrFileTooLarge  = apperr.New(apperr.KindValidation, i18n.MsgFileTooLarge, "file too large")
	ErrFileType      = apperr.New(apperr.KindValidation, i18n.MsgFileType, "file type not allowed")
	ErrFileEmpty     = apperr.New(apperr.KindValidation, i18n.MsgFileEmpty, "file is empty")
	ErrInvalidFolder = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "invalid folder")
	ErrStorage       = apperr.New(apperr.KindUpstream, i18n.MsgUpstreamFailure, "object storage failed")
)
