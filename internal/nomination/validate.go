package nomination

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrMissingRequired matches every validation failure; field-level detail
// stays in ValidationError.Fields.
var ErrMissingRequired = errors.New("nomination: missing required fields")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError collects every field-level problem found in a submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("nomination: invalid submission (%s)", strings.Join(parts, "; "))
}

// Unwrap lets callers match any validation failure with errors.Is.
func (e *ValidationError) Unwrap() error { return ErrMissingRequired }

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = v.RegisterValidation("nomemail", func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// IsEmail reports whether s has the basic local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate runs the required-field and email checks. It returns nil or a
// *ValidationError.
func Validate(s Submission) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("nomination: validate: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			out.Fields[fe.Field()] = "is required"
		case "nomemail":
			out.Fields[fe.Field()] = "must be a valid email address"
		default:
			out.Fields[fe.Field()] = "is invalid"
		}
	}
	return out
}

// Parse builds and validates a Submission from untrusted input.
func Parse(raw map[string]any) (Submission, error) {
	s := FromRaw(raw)
	if err := Validate(s); err != nil {
		return Submission{}, err
	}
	return s, nil
}
