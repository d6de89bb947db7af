package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	// symbols: tickers like AAPL, BRK.B, BTC, and carets for indices (^GSPC)
	symbolPattern = regexp.MustCompile(`^\^?[A-Z0-9.\-]{1,10}$`)
)

// ValidationError represents a validation error with field and message
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var messages []string
	for _, err := range ve {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

func init() {
	validate.RegisterValidation("symbol", validateSymbol)
	validate.RegisterValidation("tier", validateTier)
	validate.RegisterValidation("sentiment", validateSentiment)
}

// validateSymbol validates ticker/crypto symbol format
func validateSymbol(fl validator.FieldLevel) bool {
	sym, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return symbolPattern.MatchString(sym)
}

// validateTier validates a news source tier bucket
func validateTier(fl validator.FieldLevel) bool {
	tier, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch tier {
	case "tier1", "tier2", "tier3", "":
		return true
	}
	return false
}

// validateSentiment validates a per-article sentiment label
func validateSentiment(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch s {
	case "positive", "negative", "neutral", "":
		return true
	}
	return false
}

// ValidateStruct validates a struct using tags
func ValidateStruct(s interface{}) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errors ValidationErrors
	for _, err := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   err.Field(),
			Message: getErrorMessage(err.Field(), err.Tag()),
			Value:   err.Value(),
		})
	}
	return errors
}

// getErrorMessage returns a user-friendly error message
func getErrorMessage(field, tag string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "symbol":
		return fmt.Sprintf("%s must be a valid symbol (1-10 characters, optional ^ prefix)", field)
	case "tier":
		return fmt.Sprintf("%s must be one of tier1, tier2, tier3", field)
	case "sentiment":
		return fmt.Sprintf("%s must be one of positive, negative, neutral", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}

// SanitizeSymbol trims whitespace and uppercases a raw symbol string.
func SanitizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidSymbol reports whether a sanitized symbol is acceptable.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}
