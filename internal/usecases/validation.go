package usecases

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"instadm/internal/entities"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Password bounds are in bytes; bcrypt ignores nothing past 72 and rejects
// longer input.
const (
	minPasswordBytes = 6
	maxPasswordBytes = 72
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return validPasswordLength(fl.Field().String())
	}))
	must(v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(ClockLayout, fl.Field().String())
		return err == nil
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// validateStruct runs the struct's validate tags and converts failures into
// an *entities.ValidationError listing every offending field.
func validateStruct(s any, message string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]entities.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, entities.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return &entities.ValidationError{Message: message, Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "password":
		return passwordLengthMessage
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "clock":
		return "must be a time in HH:MM format"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}

var passwordLengthMessage = fmt.Sprintf("must be between %d and %d bytes", minPasswordBytes, maxPasswordBytes)

func validPasswordLength(password string) bool {
	return len(password) >= minPasswordBytes && len(password) <= maxPasswordBytes
}

// endAfterStart reports whether end is strictly later than start. Either
// value being empty passes.
func endAfterStart(start, end string) bool {
	if start == "" || end == "" {
		return true
	}
	s, err1 := time.Parse(ClockLayout, start)
	e, err2 := time.Parse(ClockLayout, end)
	if err1 != nil || err2 != nil {
		return false
	}
	return e.After(s)
}
