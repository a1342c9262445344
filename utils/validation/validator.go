package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one violated rule, keyed by the JSON path of the field ("programs.0.title").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// NewValidator creates a new validator instance that reports JSON field names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{
		validate: v,
	}
}

// RegisterStructRule adds a struct-level rule for the given types. Rules report through
// [validator.StructLevel.ReportError] and show up in Check like field tags do.
func (v *Validator) RegisterStructRule(fn validator.StructLevelFunc, types ...interface{}) {
	v.validate.RegisterStructValidation(fn, types...)
}

// Check validates s and returns every violation, or nil.
func (v *Validator) Check(s interface{}) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return FormatValidationErrors(err)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) []FieldError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := fieldPath(e.Namespace())
		label := e.Field()
		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", label)
		case "number":
			msg = fmt.Sprintf("%s must be a number", label)
		case "email":
			msg = "Invalid email format"
		case "url", "uri", "url|uri":
			msg = fmt.Sprintf("%s must be a valid URL", label)
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", label, e.Param())
		case "min":
			if e.Kind() == reflect.Slice {
				msg = fmt.Sprintf("%s must contain at least %s item(s)", label, e.Param())
			} else {
				msg = fmt.Sprintf("%s must be at least %s characters", label, e.Param())
			}
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", label, e.Param())
		case "gte":
			msg = fmt.Sprintf("%s must be greater than or equal to %s", label, e.Param())
		case "lte":
			msg = fmt.Sprintf("%s must be less than or equal to %s", label, e.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", label)
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

// fieldPath turns "Internship.programs[0].title" into "programs.0.title".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}
