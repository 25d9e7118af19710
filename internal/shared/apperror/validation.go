package apperror

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const invalidDataMessage = "The given data was invalid."

// FromValidation turns ozzo-validation field errors into a Validation error
// whose details map field name to message. Other errors pass through.
func FromValidation(code string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	details := make(map[string]string, len(fieldErrs))
	for field, fe := range fieldErrs {
		if fe != nil {
			details[field] = fe.Error()
		}
	}
	return Validation(code, invalidDataMessage, details)
}
