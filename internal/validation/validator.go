package validation

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"simple-bank-api/internal/models"
)

// Validator wraps the go-playground validator with custom rules and error formatting
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

	_ = v.RegisterValidation("not_blank", validateNotBlank)
	_ = v.RegisterValidation("letters_spaces", validateLettersAndSpaces)
	_ = v.RegisterValidation("currency_codes", validateCurrencyCodes)
	_ = v.RegisterValidation("sort_by", validateSortBy)
	_ = v.RegisterValidation("sort_order", validateSortOrder)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Var validates a single value against a tag expression
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// Struct validates a struct using its validate tags
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

// validateNotBlank rejects empty and whitespace-only strings
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateLettersAndSpaces accepts strings made only of letters and spaces.
// The empty string passes; pair with not_blank when a value is required.
func validateLettersAndSpaces(fl validator.FieldLevel) bool {
	return isLettersAndSpaces(fl.Field().String())
}

// validateCurrencyCodes accepts a comma-separated list of alphabetic codes.
// The empty string means every supported currency.
func validateCurrencyCodes(fl validator.FieldLevel) bool {
	for _, code := range strings.Split(fl.Field().String(), ",") {
		for _, r := range strings.TrimSpace(code) {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// validateSortBy accepts an empty value or one of the sortable account fields
func validateSortBy(fl validator.FieldLevel) bool {
	switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
	case "", models.SortByName, models.SortByBalance:
		return true
	default:
		return false
	}
}

// validateSortOrder accepts an empty value, ASC or DESC
func validateSortOrder(fl validator.FieldLevel) bool {
	switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
	case "", models.SortOrderAsc, models.SortOrderDesc:
		return true
	default:
		return false
	}
}

func isLettersAndSpaces(s string) bool {
	for _, r := range s {
		if r != ' ' && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
