package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeInvalidItemType  = "INVALID_ITEM_TYPE"
	ErrCodeInvalidBooking   = "INVALID_BOOKING"
	ErrCodeInvalidSlug      = "INVALID_SLUG"
	ErrCodeInvalidLanguage  = "INVALID_LANGUAGE"
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"
	ErrCodeUnsupportedMedia = "UNSUPPORTED_MEDIA"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeItemNotFound     = "ITEM_NOT_FOUND"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity  = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidItemType  = NewDomainError(ErrCodeInvalidItemType, "Item type must be product or service")
	ErrBookingRequired  = NewDomainError(ErrCodeInvalidBooking, "Service bookings require a booking date")
	ErrInvalidBooking   = NewDomainError(ErrCodeInvalidBooking, "Booking date must be YYYY-MM-DD and time HH:MM")
	ErrEmptyCheckout    = NewDomainError(ErrCodeMissingField, "Checkout must contain at least one item")
	ErrItemNotFound     = NewDomainError(ErrCodeItemNotFound, "One or more items not found")
	ErrPageNotFound     = NewDomainError(ErrCodeNotFound, "Page not found")
	ErrSectionNotFound  = NewDomainError(ErrCodeNotFound, "Section not found")
	ErrBlockNotFound    = NewDomainError(ErrCodeNotFound, "Block not found")
	ErrOrderNotFound    = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrProfileNotFound  = NewDomainError(ErrCodeNotFound, "Profile not found")
	ErrSlugTaken        = NewDomainError(ErrCodeConflict, "Slug is already in use")
	ErrInvalidSlug      = NewDomainError(ErrCodeInvalidSlug, "Slug must be lowercase letters, digits and dashes")
	ErrInvalidLanguage  = NewDomainError(ErrCodeInvalidLanguage, "Language code is not supported")
	ErrUnauthorised     = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden        = NewDomainError(ErrCodeForbidden, "Admin role required")
	ErrInvalidSignature = NewDomainError(ErrCodeInvalidSignature, "Webhook signature verification failed")
	ErrUnsupportedMedia = NewDomainError(ErrCodeUnsupportedMedia, "Upload must be a JPEG, PNG, GIF or WebP image")
	ErrUnknownSection   = NewDomainError(ErrCodeMissingField, "Section type is not supported")
	ErrInvalidSettings  = NewDomainError(ErrCodeInvalidJSON, "Section settings must be a JSON object")
	ErrRateLimited      = NewDomainError(ErrCodeRateLimited, "Too many requests")
)
