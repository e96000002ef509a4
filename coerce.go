package svcmap

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// coerce sets a struct field from its string representation. Supported
// kinds: string, bool, all int/uint widths, float32/64, time.Duration,
// time.Time (RFC 3339), pointers to any of those, and slices of any of
// those (comma-separated).
func coerce(field reflect.Value, value string) error {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return coerce(field.Elem(), value)
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() != reflect.Uint8 {
		return coerceSlice(field, strings.Split(value, ","))
	}

	return coerceScalar(field, value)
}

// coerceSlice fills a slice field from one string per element.
func coerceSlice(field reflect.Value, values []string) error {
	slice := reflect.MakeSlice(field.Type(), len(values), len(values))
	for i, v := range values {
		if err := coerceScalar(slice.Index(i), strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	field.Set(slice)
	return nil
}

func coerceScalar(field reflect.Value, value string) error {
	switch field.Type() {
	case reflect.TypeFor[time.Duration]():
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	case reflect.TypeFor[time.Time]():
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(ts))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}
