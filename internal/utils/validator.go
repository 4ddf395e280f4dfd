// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	txHashPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("tx_hash", validateTxHash)
	validate.RegisterValidation("eth_address", validateEthAddress)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// IsTxHash reports whether s is a well-formed 32-byte transaction hash.
func IsTxHash(s string) bool {
	return txHashPattern.MatchString(s)
}

// IsEthAddress reports whether s is a well-formed 20-byte hex address.
func IsEthAddress(s string) bool {
	return addressPattern.MatchString(s)
}

func validateTxHash(fl validator.FieldLevel) bool {
	return IsTxHash(fl.Field().String())
}

func validateEthAddress(fl validator.FieldLevel) bool {
	return IsEthAddress(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "tx_hash":
		return "Transaction hash must be a 0x-prefixed 64-character hex string"
	case "eth_address":
		return "Wallet address must be a 0x-prefixed 40-character hex string"
	default:
		return e.Field() + " is invalid"
	}
}
