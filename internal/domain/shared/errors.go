package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
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
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// Prediction subsystem failure classes. Only ErrValidation is ever
	// surfaced to callers as a hard failure; the rest degrade gracefully.
	ErrValidation   = NewDomainError("VALIDATION_FAILURE", "Request parameters failed validation")
	ErrCacheRead    = NewDomainError("CACHE_READ_FAILURE", "Cached record could not be read")
	ErrInference    = NewDomainError("INFERENCE_FAILURE", "Inference service call failed")
	ErrPersistence  = NewDomainError("PERSISTENCE_FAILURE", "Record could not be persisted")
)
