package common

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldErrors carries per-field validation failures. It unwraps to
// ErrValidation so the HTTP layer maps it to a 400.
type FieldErrors struct {
	Fields map[string]string // field name -> failed rule
}

func (e *FieldErrors) Error() string { return ErrValidation.Error() }
func (e *FieldErrors) Unwrap() error { return ErrValidation }

// ValidateStruct runs the shared validator over a request payload and
// converts failures into a FieldErrors.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrBadRequest
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &FieldErrors{Fields: fields}
}
