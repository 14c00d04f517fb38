package services

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var releaseNamePattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// NewValidator returns a validator with the portal's custom tags registered:
// notblank rejects whitespace-only strings, releasename enforces YYYY-MM.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("releasename", func(fl validator.FieldLevel) bool {
		return releaseNamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}
