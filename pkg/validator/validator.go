package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"anoa.com/newtongame/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

// FormatValidationError turns binding errors into a single client message.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has the wrong type", typeErr.Field)
	}

	if errors.Is(err, io.EOF) {
		return "request body is required"
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "request body is not valid JSON"
	}

	if strings.Contains(err.Error(), "invalid number literal") {
		return "numeric field is not a number"
	}
	return err.Error()
}

// BindingError wraps a gin binding failure as InvalidInput.
func BindingError(err error) error {
	return apperror.InvalidInput(FormatValidationError(err))
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "eqfield":
		return "Passwords don't match!"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Points":    "points",
		"GameType":  "gameType",
		"Level":     "level",
		"Score":     "score",
		"QuizScore": "quizScore",
		"Username":  "username",
		"Password":  "password",
		"Password1": "password1",
		"Password2": "password2",
		"Note":      "note",
		"Query":     "q",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

// ParseInt converts a JSON number or numeric string into an int.
// A nil value means the field was absent.
func ParseInt(field string, value *json.Number) (int, error) {
	if value == nil || strings.TrimSpace(value.String()) == "" {
		return 0, apperror.InvalidInput(fmt.Sprintf("%s is required", field))
	}
	return ParseIntString(field, value.String())
}

// ParseIntString is ParseInt for query parameters and form values.
func ParseIntString(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperror.InvalidInput(fmt.Sprintf("%s is required", field))
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	// Whole floats such as 12.0 or 1e2 are integers too.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloatInt {
		return 0, apperror.InvalidInput(fmt.Sprintf("%s must be an integer", field))
	}
	return int(f), nil
}

// maxExactFloatInt is the largest magnitude a float64 holds without losing integer precision.
const maxExactFloatInt = 1 << 53

// ParseFloat converts a JSON number or numeric string into a float64.
func ParseFloat(field string, value *json.Number) (float64, error) {
	if value == nil || strings.TrimSpace(value.String()) == "" {
		return 0, apperror.InvalidInput(fmt.Sprintf("%s is required", field))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value.String()), 64)
	if err != nil {
		return 0, apperror.InvalidInput(fmt.Sprintf("%s must be a number", field))
	}
	return f, nil
}
