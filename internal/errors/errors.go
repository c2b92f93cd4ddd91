// Package errors defines the application error taxonomy and central handling.
package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Machine-readable codes surfaced to API callers.
const (
	CodeMalformed        = "MALFORMED"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeNothingToClaim   = "NOTHING_TO_CLAIM"
	CodeQuotaExhausted   = "QUOTA_EXHAUSTED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewMalformedCredentialError marks a credential blob that could not be parsed.
func NewMalformedCredentialError(cause error) *AppError {
	return &AppError{
		Code:        CodeMalformed,
		Message:     fmt.Sprintf("malformed credential: %v", cause),
		UserMessage: "We couldn't read your session data. Please reopen the app.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       cause,
	}
}

// NewInvalidSignatureError marks a credential that failed authentication.
func NewInvalidSignatureError(cause error) *AppError {
	return &AppError{
		Code:        CodeInvalidSignature,
		Message:     "credential signature verification failed",
		UserMessage: "Your session could not be verified. Please reopen the app.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       cause,
	}
}

// NewNothingToClaimError marks a claim whose reported result is not positive.
func NewNothingToClaimError() *AppError {
	return &AppError{
		Code:        CodeNothingToClaim,
		Message:     "reported result contains nothing to credit",
		UserMessage: "❓ Nothing to claim.",
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewStoreError marks a failed persistence call. The remaining pipeline steps
// of the request must be aborted; the caller may retry the whole request.
func NewStoreError(cause error) *AppError {
	var underlying string
	if cause != nil {
		underlying = cause.Error()
	}

	return &AppError{
		Code:        CodeStoreUnavailable,
		Message:     fmt.Sprintf("store operation failed: %s", underlying),
		UserMessage: "Temporary problem, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewNotifyError marks a failed outbound notification. Never rolls anything
// back; logged and reported only.
func NewNotifyError(cause error) *AppError {
	return &AppError{
		Code:        "NOTIFY_FAILED",
		Message:     fmt.Sprintf("notification delivery failed: %v", cause),
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}
