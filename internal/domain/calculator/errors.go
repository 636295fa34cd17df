package calculator

import "errors"

// ValidationCode enumerates why an input was rejected.
type ValidationCode string

const (
	CodeRequired        ValidationCode = "required"
	CodeNotPositive     ValidationCode = "not_positive"
	CodeNotInteger      ValidationCode = "not_integer"
	CodeAgeOutOfRange   ValidationCode = "age_out_of_range"
	CodeInvalidUnit     ValidationCode = "invalid_unit"
	CodeInvalidGender   ValidationCode = "invalid_gender"
	CodeInvalidActivity ValidationCode = "invalid_activity"
	CodeHipRequired     ValidationCode = "hip_required"
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field string, code ValidationCode, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// AsValidationError unwraps err into a ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
