package validation

import (
	"reflect"
	"strings"

	"bark-console/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with the dashboard's custom
// rules and JSON field naming.
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("account_number", validateAccountNumber)
	_ = v.RegisterValidation("money_amount", validateMoneyAmount)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateAccountNumber accepts any string that normalizes to exactly 16
// digits once display separators are stripped.
func validateAccountNumber(fl validator.FieldLevel) bool {
	_, err := models.NormalizeAccountNumber(fl.Field().String())
	return err == nil
}

// validateMoneyAmount accepts positive decimal strings with at most 2
// fractional digits, the only amount shape the upstream accepts.
func validateMoneyAmount(fl validator.FieldLevel) bool {
	_, err := models.ParseAmount(fl.Field().String())
	return err == nil
}
