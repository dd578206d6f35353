package contextutils

import (
	"github.com/go-playground/validator/v10"
)

// validate reads the same binding tags gin uses, so CLI entry points apply
// the identical rules to request structs.
var validate = newBindingValidator()

func newBindingValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// ValidateStruct checks a request struct against its binding tags
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return NewAppErrorWithCause(ErrorCodeValidationFailed, SeverityWarn, "Validation failed", err.Error(), err)
	}
	return nil
}

// IsValidYouTubeID checks the basic shape of a video or playlist identifier
func IsValidYouTubeID(id string) bool {
	return validate.Var(id, "required,min=8,max=64,printascii,excludesall= ") == nil
}
