// Package validation checks configuration and caller input.
//
// Struct tag validation (go-playground/validator) covers configuration
// structs; the chainable Validator covers ad-hoc input checks. Both report
// failures as an *errors.AppError with code INVALID_INPUT.
//
//	type Config struct {
//	    Server string `validate:"omitempty,endpoint_host"`
//	}
//	err := validation.Validate(cfg)
//
//	err := validation.New().Required("name", name).MaxLength("name", name, 250).Validate()
package validation
