package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeMalformedMessage  = "malformed_message"
	ErrCodeProtocolViolation = "protocol_violation"
	ErrCodeAlreadyConnected  = "already_connected"
	ErrCodeUnknownRecipient  = "unknown_recipient"
	ErrCodeChannelFailure    = "channel_failure"
	ErrCodeDuplicateIdentity = "duplicate_identity"
)

var (
	ErrProtocolViolation = coreError(ErrCodeProtocolViolation, "protocol violation")
	ErrAlreadyConnected  = &CoreError{Code: ErrCodeAlreadyConnected, Message: "player is already connected", parent: ErrProtocolViolation}
	ErrUnknownRecipient  = coreError(ErrCodeUnknownRecipient, "unknown recipient")
	ErrChannelFailure    = coreError(ErrCodeChannelFailure, "channel failure")
	ErrDuplicateIdentity = coreError(ErrCodeDuplicateIdentity, "duplicate player identity")

	// ErrHubStopped is returned by submissions after Run has exited.
	ErrHubStopped = errors.New("hub stopped")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	parent  error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.parent
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// ErrorCode returns the code of the first CoreError in err's chain, or "" if there is none.
func ErrorCode(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
