package admin

import (
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
)

var (
	ErrSelfRoleChange = apperr.New(apperr.KindForbidden, i18n.MsgForbidden, "cannot change own role")
	ErrInvalidFilter  = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "invalid filter")
)
