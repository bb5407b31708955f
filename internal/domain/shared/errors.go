package shared

// DomainError is a business rule failure with a stable code. The HTTP layer
// maps the code to a status; the message is shown to the user as is.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// Is matches on code alone, so errors.Is(shared.NotFound("tile 2x2"),
// shared.ErrNotFound) holds.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified concurrently, reload and retry")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Authentication required")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Operation not permitted")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in the current state")
)

func NotFound(message string) *DomainError { return NewDomainError(ErrNotFound.Code, message) }

func Forbidden(message string) *DomainError { return NewDomainError(ErrForbidden.Code, message) }

func InvalidInput(message string) *DomainError { return NewDomainError(ErrInvalidInput.Code, message) }
