// Package validator provides custom validation functions for Gin's binding
// engine and the normalization helpers shared by request payloads.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine and
// makes validation errors report JSON field names.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func validateHexColor(fl validator.FieldLevel) bool {
	return IsHexColor(fl.Field().String())
}

// IsHexColor reports whether s is a #RGB or #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return models.PaymentMethod(fl.Field().String()).Valid()
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	return models.BudgetPeriod(fl.Field().String()).Valid()
}

// Translate converts a binding error into a field-level validation error.
// Only the first failing field is reported.
func Translate(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.Validation(fe.Field(), message(fe))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.Validation(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type.Kind()))
	}

	var amountErr *AmountError
	if errors.As(err, &amountErr) {
		return apperrors.Validation(amountErr.Field, amountErr.Message)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Malformed JSON body")
	}

	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "hex_color":
		return "must be a hex color such as #3B82F6"
	case "payment_method":
		return "must be one of cash, creditCard, debitCard, digitalWallet, bankTransfer"
	case "budget_period":
		return "must be one of weekly, monthly, quarterly, yearly"
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	}
	return "is invalid"
}
