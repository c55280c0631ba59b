package core

// Error codes carried inside error events and ERR replies.
const (
	ErrCodeNameTaken          = "name_taken"
	ErrCodeNameRequired       = "name_required"
	ErrCodeNotInRoom          = "not_in_room"
	ErrCodeNotFound           = "not_found"
	ErrCodeBadRequest         = "bad_request"
	ErrCodePayloadTooLarge    = "payload_too_large"
	ErrCodeMalformedPayload   = "malformed_payload"
	ErrCodeUnsupportedMessage = "unsupported_message"
	ErrCodeStoreUnavailable   = "store_unavailable"
	ErrCodeMalformedMessage   = "malformed_message"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
