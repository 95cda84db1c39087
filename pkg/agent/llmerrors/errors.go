// Package llmerrors classifies failures of text-generation calls. Callers use
// the classification for logging and metrics; nothing here retries.
package llmerrors

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes an LLM failure.
type ErrorType int8

const (
	// ErrorTypeRateLimit represents 429 and quota errors.
	ErrorTypeRateLimit ErrorType = iota
	// ErrorTypeTransient represents 5xx, EOF, connection reset and timeouts.
	ErrorTypeTransient
	// ErrorTypeEmptyResponse represents a successful call with no content.
	ErrorTypeEmptyResponse
	// ErrorTypeAuth represents 401/403 and bad API keys.
	ErrorTypeAuth
	// ErrorTypeBadPrompt represents rejected requests and undecodable responses.
	ErrorTypeBadPrompt
	// ErrorTypeUnknown is the default for unclassified errors.
	ErrorTypeUnknown
	// ErrorTypeServiceUnavailable represents a provider that cannot be reached at all.
	ErrorTypeServiceUnavailable
)

// String returns the string representation of the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeEmptyResponse:
		return "empty_response"
	case ErrorTypeAuth:
		return "auth"
	case ErrorTypeBadPrompt:
		return "bad_prompt"
	case ErrorTypeUnknown:
		return "unknown"
	case ErrorTypeServiceUnavailable:
		return "service_unavailable"
	default:
		return "invalid"
	}
}

// Error represents a classified LLM error.
type Error struct {
	Err        error     // Wrapped underlying error
	Message    string    // Human-readable error message
	BodyStub   string    // First portion of the response body
	Type       ErrorType // Classified error type
	StatusCode int       // HTTP status code if applicable
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("LLM error (%s): %s", e.Type.String(), e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("LLM error (%s): %v", e.Type.String(), e.Err)
	}
	return fmt.Sprintf("LLM error (%s): status %d", e.Type.String(), e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if an error is of a specific type.
func Is(err error, errorType ErrorType) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == errorType
	}
	return false
}

// TypeOf returns the error type of an error, or ErrorTypeUnknown if not classified.
func TypeOf(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}

// NewError creates a new classified LLM error.
func NewError(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// NewErrorWithStatus creates a new classified LLM error with HTTP status.
func NewErrorWithStatus(errorType ErrorType, statusCode int, message string) *Error {
	return &Error{Type: errorType, StatusCode: statusCode, Message: message}
}

// NewErrorWithCause creates a new classified LLM error wrapping another error.
func NewErrorWithCause(errorType ErrorType, cause error, message string) *Error {
	return &Error{Type: errorType, Err: cause, Message: message}
}

// NewMalformedResponseError records a response body that could not be decoded.
// Only the first portion of the body is kept.
func NewMalformedResponseError(cause error, body string) *Error {
	return &Error{
		Type:     ErrorTypeBadPrompt,
		Err:      cause,
		Message:  "malformed response",
		BodyStub: SanitizePrompt(body, 200),
	}
}

// TypeFromStatus maps an HTTP status code onto an ErrorType.
func TypeFromStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth
	case statusCode == 400 || statusCode == 404 || statusCode == 413 || statusCode == 422:
		return ErrorTypeBadPrompt
	case statusCode >= 500:
		return ErrorTypeTransient
	default:
		return ErrorTypeUnknown
	}
}

// Classify maps a provider error onto an *Error. statusCode is the HTTP status
// when the SDK exposes one, 0 otherwise, in which case the message text is
// inspected.
func Classify(err error, statusCode int, provider string) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewErrorWithCause(ErrorTypeTransient, err, provider+" request timeout")
	case errors.Is(err, context.Canceled):
		return NewErrorWithCause(ErrorTypeTransient, err, provider+" request canceled")
	}

	if statusCode != 0 {
		return &Error{
			Type:       TypeFromStatus(statusCode),
			Err:        err,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("%s API returned status %d", provider, statusCode),
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"):
		return NewErrorWithCause(ErrorTypeServiceUnavailable, err, provider+" not reachable")
	case strings.Contains(errStr, "timeout"),
		strings.Contains(errStr, "connection"),
		strings.Contains(errStr, "eof"),
		strings.Contains(errStr, "reset"):
		return NewErrorWithCause(ErrorTypeTransient, err, "network or connection error")
	case strings.Contains(errStr, "rate"), strings.Contains(errStr, "quota"):
		return NewErrorWithCause(ErrorTypeRateLimit, err, "rate limiting detected")
	case strings.Contains(errStr, "unauthorized"), strings.Contains(errStr, "api key"):
		return NewErrorWithCause(ErrorTypeAuth, err, "authentication error")
	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "invalid"):
		return NewErrorWithCause(ErrorTypeBadPrompt, err, "request rejected")
	default:
		return NewErrorWithCause(ErrorTypeUnknown, err, provider+" API error")
	}
}

// SanitizePrompt shortens large text for logging: first and last portions plus
// a hash of the full content.
func SanitizePrompt(prompt string, maxChars int) string {
	if len(prompt) <= maxChars {
		return prompt
	}

	halfMax := maxChars / 2
	if halfMax < 100 {
		halfMax = 100
	}
	if 2*halfMax >= len(prompt) {
		return prompt
	}

	hash := sha256.Sum256([]byte(prompt))
	hashStr := fmt.Sprintf("%x", hash)[:16]

	return fmt.Sprintf("%s...[%d chars, hash:%s]...%s",
		prompt[:halfMax], len(prompt), hashStr, prompt[len(prompt)-halfMax:])
}
