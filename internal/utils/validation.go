package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names in messages use the
// json tag so they match the request payload.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := models.ParseClock(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Validate performs validation on a struct and returns a ValidationError
// describing the first failing fields.
func Validate(s interface{}) error {
	if err := Validator().Struct(s); err != nil {
		return apperror.Wrap(apperror.KindValidation, FormatValidationError(err), err)
	}
	return nil
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, describe(e))
	}
	return strings.Join(messages, ", ")
}

func describe(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please provide a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, e.Param())
		}
		return fmt.Sprintf("%s cannot be less than %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s cannot be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be less than %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s cannot be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "clock":
		return fmt.Sprintf("%s must be a time in HH:MM format", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// BindJSON binds the request body to obj. Malformed JSON is reported as a
// ValidationError; struct validation is left to the service layer.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperror.Wrap(apperror.KindValidation, "Invalid request payload", err)
	}
	return nil
}
