package credit

import (
	"errors"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
)

var (
	// ErrInsufficientCredits is returned when a transaction would leave the balance negative
	ErrInsufficientCredits = apperr.New(apperr.KindInsufficientCredits, i18n.MsgInsufficientCredits, "insufficient credits")

	// ErrInvalidAmount is returned when the amount sign does not match the transaction type
	ErrInvalidAmount = apperr.New(apperr.KindValidation, i18n.MsgInvalidAmount, "invalid amount for transaction type")

	ErrInvalidType      = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "invalid transaction type")
	ErrInvalidReference = apperr.New(apperr.KindValidation, i18n.MsgValidationFailed, "reference_id requires reference_type")

	// ErrUserNotFound is returned when user doesn't exist
	ErrUserNotFound = apperr.New(apperr.KindNotFound, i18n.MsgUserNotFound, "user not found")

	// ErrConflict is returned when the balance changed between read and write and retries ran out
	ErrConflict = apperr.New(apperr.KindConflictRetryable, i18n.MsgConflictRetry, "ledger version conflict")

	// ErrReferenceConflict is returned when a reference is replayed with a different amount or user
	ErrReferenceConflict = apperr.New(apperr.KindConflict, i18n.MsgReferenceConflict, "reference conflicts with different amount")

	// ErrDuplicateReference is the repository signal for a reference unique violation
	ErrDuplicateReference = errors.New("duplicate reference")
)
