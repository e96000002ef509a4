package svcmap

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// SelfValidator is implemented by request types that validate themselves
// after binding.
type SelfValidator interface {
	Validate() error
}

// Validator validates any bound request. Set one router-wide with
// WithValidator to plug in an external validation library.
type Validator interface {
	Validate(req any) error
}

// validateConstraints checks the declarative constraint tags on a bound
// request and returns a ProblemDetail carrying every violation found.
func validateConstraints(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var errs []ValidationError
	collectViolations(rv, "", &errs)

	if len(errs) > 0 {
		return &ProblemDetail{
			Type:   "about:blank",
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: fmt.Sprintf("%d constraint violation(s)", len(errs)),
			Errors: errs,
		}
	}
	return nil
}

func collectViolations(rv reflect.Value, prefix string, errs *[]ValidationError) {
	t := rv.Type()

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		fv := rv.Field(i)

		name := jsonFieldName(f)
		if name == "-" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		// Body recurses with its own prefix so violations report wire paths.
		if f.Name == "Body" && f.Type.Kind() == reflect.Struct {
			collectViolations(fv, "body", errs)
			continue
		}

		checkField(f, fv, path, errs)
	}
}

func checkField(f reflect.StructField, fv reflect.Value, path string, errs *[]ValidationError) {
	if f.Tag.Get("required") == "true" && fv.IsZero() {
		*errs = append(*errs, ValidationError{Field: path, Message: "is required"})
		return
	}
	if fv.IsZero() {
		return // remaining constraints only apply to present values
	}

	if fv.Kind() == reflect.Pointer {
		fv = fv.Elem()
	}

	if fv.Kind() == reflect.String {
		val := fv.String()
		if tag := f.Tag.Get("minlen"); tag != "" {
			if n, err := strconv.Atoi(tag); err == nil && len(val) < n {
				*errs = append(*errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("must be at least %d characters", n),
					Value:   val,
				})
			}
		}
		if tag := f.Tag.Get("maxlen"); tag != "" {
			if n, err := strconv.Atoi(tag); err == nil && len(val) > n {
				*errs = append(*errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("must be at most %d characters", n),
					Value:   val,
				})
			}
		}
		if tag := f.Tag.Get("pattern"); tag != "" {
			if matched, err := regexp.MatchString(tag, val); err == nil && !matched {
				*errs = append(*errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("must match pattern %s", tag),
					Value:   val,
				})
			}
		}
		if tag := f.Tag.Get("enum"); tag != "" {
			if !slices.Contains(strings.Split(tag, ","), val) {
				*errs = append(*errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("must be one of [%s]", tag),
					Value:   val,
				})
			}
		}
	}

	if isNumericKind(fv.Kind()) {
		n := toFloat64(fv)
		if tag := f.Tag.Get("min"); tag != "" {
			if lower, err := strconv.ParseFloat(tag, 64); err == nil && n < lower {
				*errs = append(*errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("must be at least %s", tag),
					Value:   n,
				})
			}
		}
		if tag := f.Tag.Get("max"); tag != "" {
			if upper, err := strconv.ParseFloat(tag, 64); err == nil && n > upper {
				*errs = append(*errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("must be at most %s", tag),
					Value:   n,
				})
			}
		}
	}
}

func isNumericKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default: // float32, float64
		return v.Float()
	}
}
