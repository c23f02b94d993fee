package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Errors maps a JSON field path ("salaryRange.currency", "images[2]") to
// its message
type Errors map[string]string

// Messages maps "<path>.<tag>" to the message shown for that failure.
// Indices in the path are written as "[]".
type Messages map[string]string

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	indexPattern    = regexp.MustCompile(`\[\d+\]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "notblank", notBlank)
	mustRegister(v, "trimmin", trimmedLen(func(n, limit int) bool { return n >= limit }))
	mustRegister(v, "trimmax", trimmedLen(func(n, limit int) bool { return n <= limit }))
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return field.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !field.IsNil()
	default:
		return !field.IsZero()
	}
}

func trimmedLen(ok func(n, limit int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return ok(utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())), limit)
	}
}

// check runs the struct tags of v and translates every failure
func check(v any, msgs Messages) Errors {
	errs := Errors{}

	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_"] = err.Error()
		return errs
	}

	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if _, seen := errs[path]; seen {
			continue
		}
		errs[path] = message(msgs, path, fe)
	}
	return errs
}

// fieldPath drops the leading struct name from a namespace
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(msgs Messages, path string, fe validator.FieldError) string {
	generic := indexPattern.ReplaceAllString(path, "[]")
	if m, ok := msgs[generic+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[generic]; ok {
		return m
	}

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "trimmin":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "trimmax":
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	case "url":
		return "Invalid url"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
