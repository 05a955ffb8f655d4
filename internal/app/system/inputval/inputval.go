// Package inputval validates request input structs declaratively.
//
// Fields opt in with a `validate` tag listing rules, and a `label` tag
// naming the field in user-facing messages:
//
//	type createChannelInput struct {
//		Name string `validate:"required,min=3,max=80" label:"Channel name"`
//	}
//
// Supported rules: required, email, min=N, max=N (rune counts).
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures in field declaration order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first failure message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All returns all failure messages joined with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// Validate checks all tagged string fields of a struct and returns the
// collected failures. Non-struct input yields an empty result.
func Validate(input any) *Result {
	res := &Result{}

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return res
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
		value := v.Field(i).String()
		checkField(res, field.Name, label, value, strings.Split(rules, ","))
	}
	return res
}

func checkField(res *Result, name, label, value string, rules []string) {
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		switch {
		case rule == "required":
			if strings.TrimSpace(value) == "" {
				res.add(name, label+" is required.")
				return // no point checking further rules on an empty value
			}
		case rule == "email":
			if !IsValidEmail(value) {
				res.add(name, "A valid email address is required.")
				return
			}
		case strings.HasPrefix(rule, "min="):
			n, err := strconv.Atoi(rule[len("min="):])
			if err == nil && utf8.RuneCountInString(value) < n {
				res.add(name, fmt.Sprintf("%s must be at least %d characters.", label, n))
				return
			}
		case strings.HasPrefix(rule, "max="):
			n, err := strconv.Atoi(rule[len("max="):])
			if err == nil && utf8.RuneCountInString(value) > n {
				res.add(name, fmt.Sprintf("%s must be at most %d characters.", label, n))
				return
			}
		}
	}
}
