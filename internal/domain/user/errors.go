package user

import (
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
)

var (
	ErrUserNotFound     = apperr.New(apperr.KindNotFound, i18n.MsgUserNotFound, "user not found")
	ErrUserDeleted      = apperr.New(apperr.KindForbidden, i18n.MsgAccountDeleted, "user account deleted")
	ErrInvalidRole      = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "invalid role")
	ErrInvalidSignature = apperr.New(apperr.KindUnauthenticated, i18n.MsgInvalidSignature, "invalid identity webhook signature")
	ErrInvalidPayload   = apperr.New(apperr.KindValidation, i18n.MsgInvalidJSON, "invalid identity webhook payload")
)
