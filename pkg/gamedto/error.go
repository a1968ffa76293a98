package gamedto

// Error codes of the domain taxonomy. The HTTP layer maps these to statuses;
// services never deal in statuses directly.
const (
	CodeValidation   = "validation"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInvalidState = "invalid_state"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeRetry        = "retry"
	CodeInternal     = "internal"
)

// DomainError is the error currency between services and the API boundary.
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "domain error"
}

// E builds a non-retryable domain error.
func E(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}
