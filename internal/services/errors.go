package services

// ValidationError is a field-keyed rejection of caller input. These are
// terminal: the caller fixes the request, it is never retried as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
