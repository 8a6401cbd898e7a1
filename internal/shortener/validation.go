package shortener

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxCodeLength bounds custom short codes.
const MaxCodeLength = 20

// MaxValidityMinutes bounds submitted validity windows to ten years.
const MaxValidityMinutes = 10 * 365 * 24 * 60

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,20}$`)

// Submission is raw user input for a new short link.
type Submission struct {
	OriginalURL     string `json:"originalUrl"     validate:"required,url"`
	ValidityMinutes *int   `json:"validityMinutes" validate:"omitempty,gt=0,lte=5256000"`
	CustomCode      string `json:"customCode"      validate:"omitempty,shortcode"`
}

// Validity returns the effective validity window, or fallback when none was submitted.
func (s *Submission) Validity(fallback time.Duration) time.Duration {
	if s.ValidityMinutes == nil {
		return fallback
	}

	return time.Duration(*s.ValidityMinutes) * time.Minute
}

// ValidCode reports whether code satisfies the short code alphabet and length bound.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

		return name
	})

	_ = v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
		return ValidCode(fl.Field().String())
	})

	return v
}

// checkFormat applies the stateless rules and reports violations per field.
func checkFormat(v *validator.Validate, sub *Submission) Violations {
	violations := Violations{}

	err := v.Struct(sub)
	if err == nil {
		return violations
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		violations[FieldOriginalURL] = fmt.Errorf("%w: %s", ErrInvalidURL, err.Error())

		return violations
	}

	for _, fe := range fieldErrs {
		switch fe.Field() {
		case FieldOriginalURL:
			if fe.Tag() == "required" {
				violations[FieldOriginalURL] = fmt.Errorf("%w: url is required", ErrInvalidURL)
			} else {
				violations[FieldOriginalURL] = fmt.Errorf("%w: please enter a valid url", ErrInvalidURL)
			}
		case FieldValidity:
			if fe.Tag() == "lte" {
				violations[FieldValidity] = fmt.Errorf("%w: validity cannot exceed %d minutes",
					ErrInvalidValidity, MaxValidityMinutes)
			} else {
				violations[FieldValidity] = fmt.Errorf("%w: validity must be a positive number", ErrInvalidValidity)
			}
		case FieldCustomCode:
			violations[FieldCustomCode] = fmt.Errorf(
				"%w: short code can only contain letters, numbers, hyphens, and underscores (max %d characters)",
				ErrInvalidCodeFormat, MaxCodeLength)
		}
	}

	return violations
}
