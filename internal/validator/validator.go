package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/cultivated-hq/pulse-service/internal/errors"
	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// Validator wraps go-playground/validator with the service's custom tags
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// Validate checks struct tags and returns ValidationErrors on failure
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Var validates a single value against a tag expression
func (v *Validator) Var(field interface{}, tag string) error {
	return v.structValidator.Var(field, tag)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("scale_type", validateScaleType)
	validate.RegisterValidation("not_blank", validateNotBlank)

	// Report json field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateScaleType(fl validator.FieldLevel) bool {
	return questionnaire.ScaleType(fl.Field().String()).Valid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
