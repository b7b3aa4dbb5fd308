package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the stable machine-readable code returned to API clients
type ErrorCode int32

const (
	ErrorCode_HTTP_OK              ErrorCode = 0
	ErrorCode_INTERNAL             ErrorCode = 1000
	ErrorCode_INVALID_PAYLOAD      ErrorCode = 1001
	ErrorCode_MEETING_NOT_FOUND    ErrorCode = 1002
	ErrorCode_UNSUPPORTED_MEDIA    ErrorCode = 1003
	ErrorCode_FILE_TOO_LARGE       ErrorCode = 1004
	ErrorCode_MISSING_CREDENTIALS  ErrorCode = 1005
	ErrorCode_TRANSCRIPTION_FAILED ErrorCode = 1006
	ErrorCode_EMPTY_TRANSCRIPT     ErrorCode = 1007
	ErrorCode_GRAPH_NOT_CONFIGURED ErrorCode = 1008
	ErrorCode_PROCESSING_FAILED    ErrorCode = 1009
	ErrorCode_QUERY_TOO_SHORT      ErrorCode = 1010
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_HTTP_OK:
		return "OK"
	case ErrorCode_INTERNAL:
		return "INTERNAL"
	case ErrorCode_INVALID_PAYLOAD:
		return "INVALID_PAYLOAD"
	case ErrorCode_MEETING_NOT_FOUND:
		return "MEETING_NOT_FOUND"
	case ErrorCode_UNSUPPORTED_MEDIA:
		return "UNSUPPORTED_MEDIA"
	case ErrorCode_FILE_TOO_LARGE:
		return "FILE_TOO_LARGE"
	case ErrorCode_MISSING_CREDENTIALS:
		return "MISSING_CREDENTIALS"
	case ErrorCode_TRANSCRIPTION_FAILED:
		return "TRANSCRIPTION_FAILED"
	case ErrorCode_EMPTY_TRANSCRIPT:
		return "EMPTY_TRANSCRIPT"
	case ErrorCode_GRAPH_NOT_CONFIGURED:
		return "GRAPH_NOT_CONFIGURED"
	case ErrorCode_PROCESSING_FAILED:
		return "PROCESSING_FAILED"
	case ErrorCode_QUERY_TOO_SHORT:
		return "QUERY_TOO_SHORT"
	default:
		return "UNKNOWN"
	}
}

// AppError wraps a raw error with an HTTP status and a client facing code
type AppError struct {
	Raw       error     `json:"-"`
	HTTPCode  int       `json:"-"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Transient bool      `json:"-"`
}

func (e *AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Raw)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// WithDetail attaches extra context for the client without mutating the
// shared error value
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Details = detail
	return &cp
}

// WithRaw attaches the underlying cause
func (e *AppError) WithRaw(err error) *AppError {
	cp := *e
	cp.Raw = err
	return &cp
}

func newError(httpCode int, code ErrorCode, message string) *AppError {
	return &AppError{HTTPCode: httpCode, Code: code, Message: message}
}

var (
	ErrInternal            = newError(http.StatusInternalServerError, ErrorCode_INTERNAL, "internal server error")
	ErrInvalidPayload      = newError(http.StatusBadRequest, ErrorCode_INVALID_PAYLOAD, "invalid request payload")
	ErrMeetingNotFound     = newError(http.StatusNotFound, ErrorCode_MEETING_NOT_FOUND, "meeting not found")
	ErrUnsupportedMedia    = newError(http.StatusBadRequest, ErrorCode_UNSUPPORTED_MEDIA, "unsupported media type")
	ErrFileTooLarge        = newError(http.StatusRequestEntityTooLarge, ErrorCode_FILE_TOO_LARGE, "file exceeds the maximum allowed size")
	ErrMissingCredentials  = newError(http.StatusInternalServerError, ErrorCode_MISSING_CREDENTIALS, "required provider credentials are not configured")
	ErrTranscriptionFailed = newError(http.StatusInternalServerError, ErrorCode_TRANSCRIPTION_FAILED, "speech to text failed")
	ErrEmptyTranscript     = newError(http.StatusUnprocessableEntity, ErrorCode_EMPTY_TRANSCRIPT, "no speech detected in the recording")
	ErrGraphNotConfigured  = newError(http.StatusServiceUnavailable, ErrorCode_GRAPH_NOT_CONFIGURED, "graph store is not configured")
	ErrProcessingFailed    = newError(http.StatusInternalServerError, ErrorCode_PROCESSING_FAILED, "meeting processing failed")
	ErrQueryTooShort       = newError(http.StatusBadRequest, ErrorCode_QUERY_TOO_SHORT, "search query must be at least 3 characters")
)

// Transient marks an error as retryable for the pipeline
func Transient(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		cp := *appErr
		cp.Transient = true
		return &cp
	}
	return &AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   err.Error(),
		Transient: true,
	}
}

// IsTransient reports whether a retry could plausibly succeed
func IsTransient(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Transient
	}
	return false
}
