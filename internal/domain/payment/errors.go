package payment

import (
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
)

var (
	ErrUnknownPackage   = apperr.New(apperr.KindValidation, i18n.MsgUnknownPackage, "unknown credit package")
	ErrCheckoutFailed   = apperr.New(apperr.KindUpstream, i18n.MsgUpstreamFailure, "checkout session could not be created")
	ErrInvalidSignature = apperr.New(apperr.KindUnauthenticated, i18n.MsgInvalidSignature, "invalid payment webhook signature")
	ErrInvalidPayload   = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "invalid payment webhook payload")
	ErrSessionMismatch  = apperr.New(apperr.KindConflict, i18n.MsgReferenceConflict, "webhook does not match the checkout session")
)
