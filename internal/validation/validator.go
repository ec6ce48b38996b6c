// Package validation adapts go-playground/validator to the app's error
// model: struct tag failures come back as a single Validation error
// carrying a field-to-message map.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
)

// tagMessages maps validation tags to human-readable messages. A "%s"
// is substituted with the tag parameter.
//
//nolint:gochecknoglobals // Static lookup table
var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"min":      "must be at least %s characters",
	"max":      "must not exceed %s characters",
	"len":      "must be exactly %s characters",
	"oneof":    "must be one of: %s",
	"shelf":    "must be one of: want_to_read, currently_reading, read",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"gt":       "must be greater than %s",
	"lt":       "must be less than %s",
	"gtefield": "must be greater than or equal to %s",
	"ltefield": "must be less than or equal to %s",
	"gtfield":  "must be greater than %s",
	"ltfield":  "must be less than %s",
}

// Validator validates request structs via their `validate` tags.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the app's custom tags registered. Error
// messages name fields by their JSON tag, matching what clients sent.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if tag == "" {
			return fld.Name
		}
		return tag
	})

	// shelf: one of the three reading shelves.
	//nolint:errcheck // Registration only fails on empty tag or nil fn.
	v.RegisterValidation("shelf", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "want_to_read", "currently_reading", "read":
			return true
		default:
			return false
		}
	})

	return &Validator{v: v}
}

// Validate checks s against its tags. On failure it returns a
// Validation domain error whose Details is a map of field name to
// message.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = messageFor(fe)
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

func messageFor(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return strings.Replace(msg, "%s", fe.Param(), 1)
	}
	return msg
}
