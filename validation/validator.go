package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Init configures the validator behind gin's binding. It is safe to call
// more than once.
//   - Field names in errors come from the json tag, then the form tag.
//   - strongpwd: 8 to 72 bytes with upper, lower, digit and symbol.
//   - emailaddr: a valid email once surrounding spaces are trimmed.
func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("strongpwd", strongPassword)
		_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return v.Var(strings.TrimSpace(fl.Field().String()), "email") == nil
		})
	})
}

const MaxPasswordBytes = 72

func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	// bcrypt only accepts up to 72 bytes.
	if len([]rune(s)) < 8 || len(s) > MaxPasswordBytes {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Struct validates obj against its binding tags.
func Struct(obj any) error {
	Init()
	return binding.Validator.ValidateStruct(obj)
}

// Var validates a single value, e.g. Var(email, "email").
func Var(value any, tag string) error {
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validator engine unavailable")
	}
	return v.Var(value, tag)
}

// ToDetails converts binding errors into a field → message map for the
// error response.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// Summary joins details into one sorted message.
func Summary(details map[string]string) string {
	if len(details) == 0 {
		return "Invalid request"
	}
	parts := make([]string, 0, len(details))
	for field, msg := range details {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"
	case "email", "emailaddr":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "hexadecimal":
		return "must be hexadecimal"
	case "strongpwd":
		return "must be 8 to 72 bytes with uppercase, lowercase, number and special character"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("validation failed for '%s'", fe.Tag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
