// Package validation applies declarative `validate` struct tags to request
// payloads and reports failures as a structured set of field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/expensesplit/internal/errs"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	// decimal.Decimal is a struct, so built-in numeric tags like gt=0 do not apply.
	if err := v.RegisterValidation("positive_decimal", positiveDecimal); err != nil {
		return nil, fmt.Errorf("failed to register 'positive_decimal': %w", err)
	}

	return v, nil
}

func get() (*validator.Validate, error) {
	validateOnce.Do(func() {
		validate, errValidate = newValidator()
	})
	return validate, errValidate
}

// Struct validates payload. It returns nil, a *errs.ValidationError keyed by
// JSON field path, or an internal error if the validator cannot run.
func Struct(payload any) error {
	v, err := get()
	if err != nil {
		return fmt.Errorf("validator initialization failed: %w", err)
	}

	err = v.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate payload: %w", err)
	}

	ve := errs.NewValidationError()
	for _, fe := range fieldErrs {
		ve.Add(fieldPath(fe), message(fe))
	}
	return ve
}

var messages = map[string]func(param string) string{
	"required": func(string) string {
		return "Missing data for required field."
	},
	"min": func(param string) string {
		return fmt.Sprintf("Length must be at least %s.", param)
	},
	"max": func(param string) string {
		return fmt.Sprintf("Length must be at most %s.", param)
	},
	"email": func(string) string {
		return "Not a valid email address."
	},
	"positive_decimal": func(string) string {
		return "Must be greater than 0."
	},
}

func message(fe validator.FieldError) string {
	if format, ok := messages[fe.Tag()]; ok {
		return format(fe.Param())
	}
	return fmt.Sprintf("Failed '%s' check.", fe.Tag())
}

// fieldPath strips the root struct name from the namespace, leaving the
// JSON path ("participants[0].id").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

func positiveDecimal(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return v.IsPositive()
	case *decimal.Decimal:
		return v != nil && v.IsPositive()
	}
	return false
}
