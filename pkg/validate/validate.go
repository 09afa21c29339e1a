// Package validate provides struct-tag validation for request inputs.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required        field must not be zero/empty
//	nullable        if empty, skip all remaining rules for this field
//	email           valid email address
//	url             absolute http/https URL
//	uuid            RFC 4122 UUID
//	media           http/https URL or a base64 data URI (data:<mime>;base64,...)
//	base64          raw base64 or a base64 data URI
//	min=N, max=N    string: char length | number: value | slice: length
//	gt=N, gte=N     number bounds
//	lt=N, lte=N     number bounds
//	between=lo,hi   number or string length between lo and hi (inclusive)
//	in=a,b,c        value must be one of the listed items
//	not_in=a,b,c    value must not be one of the listed items
//
// Example:
//
//	type LoginInput struct {
//	    Role string `json:"role" validate:"required,in=customer,vendor"`
//	}
package validate

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		name := jsonFieldName(field)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "url":
		if !isHTTPURL(raw) {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "uuid":
		if _, err := uuid.Parse(raw); err != nil {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
	case "media":
		if !isHTTPURL(raw) && !IsDataURI(raw) {
			return fmt.Sprintf("The %s must be a URL or a base64 data URI.", field)
		}
	case "base64":
		if !isBase64Payload(raw) {
			return fmt.Sprintf("The %s must be base64-encoded image data.", field)
		}

	case "min":
		n := parseFloat(param)
		if measure(v, raw) < n {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit(v))
		}
	case "max":
		n := parseFloat(param)
		if measure(v, raw) > n {
			return fmt.Sprintf("The %s must not be greater than %s%s.", field, param, unit(v))
		}
	case "gt":
		if toFloat(v) <= parseFloat(param) {
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		}
	case "gte":
		if toFloat(v) < parseFloat(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lt":
		if toFloat(v) >= parseFloat(param) {
			return fmt.Sprintf("The %s must be less than %s.", field, param)
		}
	case "lte":
		if toFloat(v) > parseFloat(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if ok {
			m := measure(v, raw)
			if m < parseFloat(lo) || m > parseFloat(hi) {
				return fmt.Sprintf("The %s must be between %s and %s%s.", field, lo, hi, unit(v))
			}
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "not_in":
		for _, f := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(f) {
				return fmt.Sprintf("The selected %s is invalid.", field)
			}
		}
	}

	return ""
}

// IsDataURI reports whether s looks like data:<mime>;base64,<payload>.
func IsDataURI(s string) bool {
	if !strings.HasPrefix(s, "data:") {
		return false
	}
	idx := strings.Index(s, ";base64,")
	return idx > len("data:") && idx+len(";base64,") < len(s)
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isBase64Payload checks a bounded prefix so multi-megabyte photos are not
// decoded twice.
func isBase64Payload(raw string) bool {
	if _, payload, ok := strings.Cut(raw, "base64,"); ok {
		raw = payload
	}
	if raw == "" {
		return false
	}
	probe := raw
	if len(probe) > 4096 {
		probe = probe[:4096]
	}
	_, err := base64.StdEncoding.DecodeString(probe)
	return err == nil
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// measure returns the value for numbers, element count for slices and rune
// length for everything else.
func measure(v reflect.Value, raw string) float64 {
	switch {
	case isNumericKind(v):
		return toFloat(v)
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array || v.Kind() == reflect.Map:
		return float64(v.Len())
	default:
		return float64(len([]rune(raw)))
	}
}

func unit(v reflect.Value) string {
	switch {
	case isNumericKind(v):
		return ""
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array || v.Kind() == reflect.Map:
		return " items"
	default:
		return " characters"
	}
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

var multiValueRules = []string{"in=", "not_in=", "between="}

var knownRules = []string{
	"required", "nullable", "email", "url", "uuid", "media", "base64",
	"min=", "max=", "gt=", "gte=", "lt=", "lte=", "between=", "in=", "not_in=",
}

// splitRules splits the tag on commas while keeping the parameters of
// multi-value rules together:
// "required,in=customer,vendor,max=10" → ["required","in=customer,vendor","max=10"]
func splitRules(tag string) []string {
	var (
		rules   []string
		current strings.Builder
		inParam bool
	)

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam {
				for _, pfx := range multiValueRules {
					if current.String() == pfx {
						inParam = true
						break
					}
				}
			}
			continue
		}

		if inParam && !startsWithRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

func startsWithRule(s string) bool {
	for _, k := range knownRules {
		if strings.HasPrefix(s, k) {
			// "in=" must not match the start of a value like "inch".
			if !strings.HasSuffix(k, "=") && len(s) > len(k) && s[len(k)] != ',' {
				continue
			}
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
