package i18n

// Message keys shared by handlers and the error mapper.
const (
	MsgUnauthenticated     = "unauthenticated"
	MsgTokenExpired        = "token_expired"
	MsgForbidden           = "forbidden"
	MsgAccountDeleted      = "account_deleted"
	MsgNotFound            = "not_found"
	MsgUserNotFound        = "user_not_found"
	MsgJobNotFound         = "job_not_found"
	MsgContentNotFound     = "content_not_found"
	MsgInvalidJSON         = "invalid_json"
	MsgInvalidID           = "invalid_id"
	MsgValidationFailed    = "validation_failed"
	MsgInsufficientCredits = "insufficient_credits"
	MsgInvalidAmount       = "invalid_amount"
	MsgReferenceConflict   = "reference_conflict"
	MsgInvalidTransition   = "invalid_transition"
	MsgConflictRetry       = "conflict_retry"
	MsgUpstreamFailure     = "upstream_failure"
	MsgGenerationFailed    = "generation_failed"
	MsgInvalidSignature    = "invalid_signature"
	MsgUnknownPackage      = "unknown_package"
	MsgFileTooLarge        = "file_too_large"
	MsgFileType            = "file_type_not_allowed"
	MsgFileEmpty           = "file_empty"
	MsgInternal            = "internal_error"
)

var catalog = map[string]map[string]string{
	"en": {
		MsgUnauthenticated:     "Authentication required",
		MsgTokenExpired:        "Session expired, please sign in again",
		MsgForbidden:           "You do not have permission to perform this action",
		MsgAccountDeleted:      "This account has been deleted",
		MsgNotFound:            "Resource not found",
		MsgUserNotFound:        "User not found",
		MsgJobNotFound:         "Job not found",
		MsgContentNotFound:     "Content not found",
		MsgInvalidJSON:         "Invalid JSON body",
		MsgInvalidID:           "Invalid identifier",
		MsgValidationFailed:    "Validation failed",
		MsgInsufficientCredits: "Not enough credits, please purchase more",
		MsgInvalidAmount:       "Amount is not valid for this transaction type",
		MsgReferenceConflict:   "This reference was already used with a different amount",
		MsgInvalidTransition:   "The job cannot move to the requested status",
		MsgConflictRetry:       "The balance is busy, please try again",
		MsgUpstreamFailure:     "An external service failed, please try again later",
		MsgGenerationFailed:    "Image generation failed, your credits were refunded",
		MsgInvalidSignature:    "Invalid signature",
		MsgUnknownPackage:      "Unknown credit package",
		MsgFileTooLarge:        "File is too large",
		MsgFileType:            "File type is not allowed",
		MsgFileEmpty:           "File is empty",
		MsgInternal:            "An unexpected error occurred",
	},
	"tr": {
		MsgUnauthenticated:     "Kimlik doğrulaması gerekli",
		MsgTokenExpired:        "Oturumun süresi doldu, lütfen tekrar giriş yapın",
		MsgForbidden:           "Bu işlem için yetkiniz yok",
		MsgAccountDeleted:      "Bu hesap silinmiş",
		MsgNotFound:            "Kayıt bulunamadı",
		MsgUserNotFound:        "Kullanıcı bulunamadı",
		MsgJobNotFound:         "İş bulunamadı",
		MsgContentNotFound:     "İçerik bulunamadı",
		MsgInvalidJSON:         "Geçersiz JSON gövdesi",
		MsgInvalidID:           "Geçersiz kimlik",
		MsgValidationFailed:    "Doğrulama başarısız",
		MsgInsufficientCredits: "Yeterli krediniz yok, lütfen kredi satın alın",
		MsgInvalidAmount:       "Tutar bu işlem türü için geçerli değil",
		MsgReferenceConflict:   "Bu referans farklı bir tutarla zaten kullanıldı",
		MsgInvalidTransition:   "İş istenen duruma geçemez",
		MsgConflictRetry:       "Bakiye meşgul, lütfen tekrar deneyin",
		MsgUpstreamFailure:     "Harici bir servis başarısız oldu, lütfen daha sonra tekrar deneyin",
		MsgGenerationFailed:    "Görsel oluşturma başarısız oldu, kredileriniz iade edildi",
		MsgInvalidSignature:    "Geçersiz imza",
		MsgUnknownPackage:      "Bilinmeyen kredi paketi",
		MsgFileTooLarge:        "Dosya çok büyük",
		MsgFileType:            "Dosya türüne izin verilmiyor",
		MsgFileEmpty:           "Dosya boş",
		MsgInternal:            "Beklenmeyen bir hata oluştu",
	},
}
