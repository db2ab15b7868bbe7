// Package forms checks user input locally before it reaches the network.
//
// Failures are reported per field as ValidationError values; the screen
// layer decides how to show them.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// CodeLength is the number of digits in an email verification code.
const CodeLength = 4

// ValidationError reports a single rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is the list of every rejected field of a form.
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for field, or "" when it passed.
func (e Errors) Field(field string) string {
	for _, v := range e {
		if v.Field == field {
			return v.Message
		}
	}
	return ""
}

var (
	phonePattern   = regexp.MustCompile(`^\+[1-9]\d{9,14}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return PasswordProblem(fl.Field().String()) == ""
		})
		validate = v
	})
	return validate
}

// Struct validates a form annotated with `validate` tags. It returns nil or
// an Errors value.
func Struct(form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "required"
	case "email":
		return "invalid email format"
	case "phone":
		return "invalid format, e.g. +1 514 123 4567"
	case "password":
		return PasswordProblem(fe.Value().(string))
	case "eqfield":
		return "passwords do not match"
	case "gt", "gte":
		return "must be positive"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone accepts international numbers, ignoring spaces, dashes and
// parentheses.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(phoneSeparator.Replace(s))
}

// PasswordProblem describes why password is too weak, or returns "".
func PasswordProblem(password string) string {
	if len(password) < 8 {
		return "at least 8 characters"
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			special = true
		}
	}

	switch {
	case !upper:
		return "at least one uppercase letter"
	case !lower:
		return "at least one lowercase letter"
	case !digit:
		return "at least one digit"
	case !special:
		return "at least one special character"
	}
	return ""
}

// Credentials checks a login form.
func Credentials(email, password string) error {
	var out Errors
	switch {
	case email == "":
		out = append(out, ValidationError{Field: "email", Message: "required"})
	case !ValidEmail(email):
		out = append(out, ValidationError{Field: "email", Message: "invalid email format"})
	}
	if password == "" {
		out = append(out, ValidationError{Field: "password", Message: "required"})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Code checks that code is exactly CodeLength ASCII digits.
func Code(code string) error {
	if len(code) != CodeLength {
		return ValidationError{Field: "code", Message: fmt.Sprintf("must be %d digits", CodeLength)}
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ValidationError{Field: "code", Message: "digits only"}
		}
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}
