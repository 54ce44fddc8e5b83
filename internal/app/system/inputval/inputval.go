// Package inputval validates form input structs via `validate` field tags,
// keeping handler code down to one call per form.
//
// Supported rules (comma-separated): required, min=N, max=N (rune length),
// and email. The `label` tag supplies the field name used in messages.
//
//	type createBillInput struct {
//		Title string `validate:"required,max=300" label:"Title"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/validate"
)

// Result collects validation failures in field order.
type Result struct {
	errs []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.errs) > 0 }

// First returns the first failure message, or "".
func (r Result) First() string {
	if len(r.errs) == 0 {
		return ""
	}
	return r.errs[0]
}

// All returns every failure message.
func (r Result) All() []string { return r.errs }

func (r *Result) addf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

// IsValidEmail reports whether s looks like a deliverable email address.
func IsValidEmail(s string) bool {
	return validate.SimpleEmailValid(s)
}

// Validate checks every tagged string field of the input struct.
// Non-struct inputs and non-string fields are ignored.
func Validate(input any) Result {
	var result Result

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return result
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		rules := field.Tag.Get("validate")
		if rules == "" || field.Type.Kind() != reflect.String {
			continue
		}

		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		value := strings.TrimSpace(v.Field(i).String())

		for _, rule := range strings.Split(rules, ",") {
			switch {
			case rule == "required":
				if value == "" {
					result.addf("%s is required.", label)
				}
			case rule == "email":
				if value != "" && !IsValidEmail(value) {
					result.addf("%s must be a valid email address.", label)
				}
			case strings.HasPrefix(rule, "min="):
				if n, err := strconv.Atoi(rule[4:]); err == nil {
					if value != "" && utf8.RuneCountInString(value) < n {
						result.addf("%s must be at least %d characters.", label, n)
					}
				}
			case strings.HasPrefix(rule, "max="):
				if n, err := strconv.Atoi(rule[4:]); err == nil {
					if utf8.RuneCountInString(value) > n {
						result.addf("%s must be at most %d characters.", label, n)
					}
				}
			}
		}
	}
	return result
}
