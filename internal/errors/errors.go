package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeValidation    = "E100"
	CodePersistence   = "E200"
	CodePlatform      = "E300"
	CodeAuthorization = "E400"
	CodeRateLimit     = "E500"
)

// AppError is a failure with a user-facing reply. UserMessage is an i18n key
// formatted with UserArgs.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	UserArgs    []any
	Severity    Severity
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

func (e *AppError) Cause() error {
	return e.Unwrap()
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: "errors.validation",
		Severity:    SeverityLow,
	}
}

// NewPersistenceError marks a failed ledger write. The in-memory ledger is
// already ahead of the file when this is raised.
func NewPersistenceError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodePersistence,
		Message:     fmt.Sprintf("Persistence error: %s", underlyingMsg),
		UserMessage: "errors.persistence",
		Severity:    SeverityCritical,
		cause:       cause,
	}
}

func NewPlatformError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        CodePlatform,
		Message:     fmt.Sprintf("Platform API error: %s", apiName),
		UserMessage: "errors.platform",
		Severity:    SeverityMedium,
		cause:       cause,
	}
}

func NewAuthorizationError(msg string) *AppError {
	return &AppError{
		Code:        CodeAuthorization,
		Message:     msg,
		UserMessage: "errors.forbidden",
		Severity:    SeverityLow,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        CodeRateLimit,
		Message:     fmt.Sprintf("Rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: "errors.rate_limit",
		UserArgs:    []any{retryAfter},
		Severity:    SeverityLow,
	}
}
