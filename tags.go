package svcmap

import (
	"reflect"
	"strings"
)

// paramTags are the struct tags naming request facets a field binds to.
var paramTags = []string{"path", "query", "header", "cookie"}

func structType(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

// hasParamTags reports whether the type has any fields bound to path,
// query, header, or cookie facets.
func hasParamTags(t reflect.Type) bool {
	t, ok := structType(t)
	if !ok {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		for _, tag := range paramTags {
			if f.Tag.Get(tag) != "" {
				return true
			}
		}
	}
	return false
}

// hasRawRequest reports whether the type embeds a RawRequest field.
func hasRawRequest(t reflect.Type) bool {
	t, ok := structType(t)
	if !ok {
		return false
	}
	for i := range t.NumField() {
		if t.Field(i).Type == reflect.TypeFor[RawRequest]() {
			return true
		}
	}
	return false
}

// hasBodyField reports whether the type has an exported "Body" field.
func hasBodyField(t reflect.Type) bool {
	t, ok := structType(t)
	if !ok {
		return false
	}
	_, found := t.FieldByName("Body")
	return found
}

// hasFormTags reports whether the type has any fields with a "form"
// binding tag.
func hasFormTags(t reflect.Type) bool {
	t, ok := structType(t)
	if !ok {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get("form") != "" {
			return true
		}
	}
	return false
}

// tagName splits a struct tag value on comma and returns the leading
// name, dropping options.
func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// jsonFieldName returns the wire name of a field for error reporting:
// the json tag name when present, the Go field name otherwise.
func jsonFieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name := tagName(tag); name != "" {
			return name
		}
	}
	return f.Name
}
