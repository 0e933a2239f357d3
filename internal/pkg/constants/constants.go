package constants

import "net/http"

const (
	// ViperSecretKey holds the shared token required by the trigger endpoints.
	ViperSecretKey = "api_secret"

	HeaderKeySecretToken = "X-Api-Secret"
)

// CodedError is an error carrying the HTTP status it should be reported with.
type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound   = NewCodedError("not found", http.StatusNotFound)
	ErrUnauthorized = NewCodedError("unauthorized", http.StatusUnauthorized)
	ErrGone         = NewCodedError("record unavailable upstream", http.StatusGone)
)
