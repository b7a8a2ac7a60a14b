package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Password policy shared by registration, reset and profile update.
const (
	PasswordMinLength = 8
	PasswordMaxLength = 50
	// bcrypt refuses longer input
	PasswordMaxBytes = 72
)

// PasswordProblem returns a description of the first rule the password
// breaks, or "" when it satisfies the policy.
func PasswordProblem(pw string) string {
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	length := len([]rune(pw))
	switch {
	case length < PasswordMinLength:
		return fmt.Sprintf("should be at least %d characters long", PasswordMinLength)
	case length > PasswordMaxLength:
		return fmt.Sprintf("should not be longer than %d characters", PasswordMaxLength)
	case len(pw) > PasswordMaxBytes:
		return fmt.Sprintf("should not be longer than %d bytes", PasswordMaxBytes)
	case !lower:
		return "should contain at least 1 lower-cased letter"
	case !upper:
		return "should contain at least 1 upper-cased letter"
	case !digit:
		return "should contain at least 1 number"
	}
	return ""
}

// structValidator plugs go-playground/validator into gin's binding so the
// same rules run for request binding and for direct service calls.
type structValidator struct {
	once     sync.Once
	validate *validator.Validate
}

var defaultValidator = &structValidator{}

func (v *structValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return PasswordProblem(fl.Field().String()) == ""
		})
	})
}

func (v *structValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

func (v *structValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

// InstallValidator replaces gin's default binding validator.
func InstallValidator() {
	binding.Validator = defaultValidator
}

// Validate checks obj against its binding tags and returns a readable
// message for the first violated field.
func Validate(obj any) error {
	if err := defaultValidator.ValidateStruct(obj); err != nil {
		return errors.New(ValidationMessage(err))
	}
	return nil
}

// ValidationMessage turns a binding error into a short client message naming
// the first offending field.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	field := fmt.Sprintf("%q", fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s length must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s length must be less than or equal to %s characters long", field, fe.Param())
	case "gt":
		return field + " must be a positive number"
	case "password":
		var value string
		switch v := fe.Value().(type) {
		case string:
			value = v
		case *string:
			if v != nil {
				value = *v
			}
		}
		return field + " " + PasswordProblem(value)
	default:
		return field + " is invalid"
	}
}

// TrimStrings trims surrounding whitespace from every settable string field
// of the struct pointed to by ptr, the way the schema did before saving.
func TrimStrings(ptr any) {
	value := reflect.ValueOf(ptr)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return
	}
	value = value.Elem()
	for i := 0; i < value.NumField(); i++ {
		f := value.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
