// Package validator wraps go-playground/validator with json field names and
// a flat error type the HTTP layer can render.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
)

var Module = fx.Module("validator",
	fx.Provide(New),
)

var ErrValidation = errors.New("validation_error")

// FieldError describes one failed rule. Field is the json path of the value,
// e.g. items[0].quantity.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error collects every failed rule of a validated value.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns *Error when any rule fails.
func (v *Validator) Struct(s any) error {
	return convert(v.validate.Struct(s), "")
}

// Var validates a single value against tag. name labels the value in the
// returned error.
func (v *Validator) Var(name string, value any, tag string) error {
	return convert(v.validate.Var(value, tag), name)
}

var std = New()

// Var validates value with the package level validator. Value types that
// check themselves at construction use it.
func Var(name string, value any, tag string) error {
	return std.Var(name, value, tag)
}

// Fields returns the field errors carried by err, or nil.
func Fields(err error) []FieldError {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func convert(err error, name string) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		field := fieldPath(fe.Namespace())
		if field == "" {
			field = name
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a namespace such as
// CreateDocumentRequest.items[0].quantity.
func fieldPath(namespace string) string {
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 {
		return namespace[idx+1:]
	}
	return ""
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have at least %s entries or characters", e.Param())
	case "max":
		return fmt.Sprintf("must have at most %s entries or characters", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "len":
		return fmt.Sprintf("must have length %s", e.Param())
	case "iso3166_1_alpha2":
		return "must be a two letter country code"
	default:
		return fmt.Sprintf("failed on '%s'", e.Tag())
	}
}
