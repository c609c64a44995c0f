// Package validation provides the checks beankit runs on configuration and
// bean definitions.
//
// Struct tag validation (go-playground/validator) covers config sections:
//
//	type Config struct {
//	    Port int `mapstructure:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects field errors before failing:
//
//	err := validation.New().
//	    Required("id", def.ID).
//	    NotNil("construct", def.Construct).
//	    Validate()
//
// Both forms return *errors.AppError with the offending fields in Details.
package validation
