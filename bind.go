package svcmap

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"
)

// maxMultipartMemory caps the memory used for multipart form parsing (32 MB).
const maxMultipartMemory = 32 << 20

// requestShape describes how a request type is populated from the wire.
type requestShape int

const (
	shapeVoid     requestShape = iota // Void, nothing to bind
	shapeBodyOnly                     // entire struct is the body
	shapeParams                       // facet tags only, no body
	shapeMixed                        // facet tags plus a Body field
	shapeForm                         // form tags (urlencoded or multipart)
)

// classifyRequest determines the shape of a request type.
func classifyRequest(t reflect.Type) requestShape {
	if t == reflect.TypeFor[Void]() {
		return shapeVoid
	}
	if hasFormTags(t) {
		return shapeForm
	}
	if hasBodyField(t) {
		return shapeMixed
	}
	if hasParamTags(t) || hasRawRequest(t) {
		return shapeParams
	}
	return shapeBodyOnly
}

// bindRequest creates a new Req value and populates it from the HTTP
// request. dec is the negotiated body decoder; it is only consulted for
// shapes that carry a body.
func bindRequest[Req any](r *http.Request, dec Decoder) (*Req, error) {
	req := new(Req)
	shape := classifyRequest(reflect.TypeFor[Req]())

	if shape == shapeVoid {
		return req, nil
	}

	// Facet binding also handles RawRequest injection, so it runs for
	// every non-void shape.
	if err := bindFacets(req, r); err != nil {
		return nil, err
	}

	switch shape {
	case shapeBodyOnly:
		if err := decodeBody(r, dec, req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	case shapeMixed:
		body := reflect.ValueOf(req).Elem().FieldByName("Body")
		if err := decodeBody(r, dec, body.Addr().Interface()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	case shapeForm:
		if err := bindForm(req, r); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// bindFacets binds path, query, header, and cookie values to tagged
// struct fields, applying default tags when the facet yields nothing.
func bindFacets(target any, r *http.Request) error {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name == "Body" {
			continue // decoded separately
		}

		field := v.Field(i)

		if name := f.Tag.Get("path"); name != "" {
			val := r.PathValue(name)
			if val == "" {
				val = f.Tag.Get("default")
			}
			if val != "" {
				if err := coerce(field, val); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindPath, name, err)
				}
			}
		}

		if name := f.Tag.Get("query"); name != "" {
			if err := bindMultiValue(field, r.URL.Query()[name], f.Tag.Get("default")); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBindQuery, name, err)
			}
		}

		if name := f.Tag.Get("header"); name != "" {
			val := r.Header.Get(name)
			if val == "" {
				val = f.Tag.Get("default")
			}
			if val != "" {
				if err := coerce(field, val); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindHeader, name, err)
				}
			}
		}

		if name := f.Tag.Get("cookie"); name != "" {
			var val string
			if c, err := r.Cookie(name); err == nil {
				val = c.Value
			}
			if val == "" {
				val = f.Tag.Get("default")
			}
			if val != "" {
				if err := coerce(field, val); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindCookie, name, err)
				}
			}
		}

		// Embedded RawRequest: inject the underlying *http.Request.
		if f.Type == reflect.TypeFor[RawRequest]() {
			field.Set(reflect.ValueOf(RawRequest{Request: r}))
		}
	}

	return nil
}

// bindMultiValue binds a facet that may repeat (query, form). Slice
// fields consume every occurrence; scalars take the first.
func bindMultiValue(field reflect.Value, values []string, def string) error {
	if len(values) == 0 || (len(values) == 1 && values[0] == "") {
		if def == "" {
			return nil
		}
		values = []string{def}
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() != reflect.Uint8 {
		if len(values) == 1 {
			// Single occurrence may carry a comma-separated list.
			return coerceSlice(field, splitList(values[0]))
		}
		return coerceSlice(field, values)
	}
	return coerce(field, values[0])
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// bindForm binds urlencoded or multipart form fields and uploaded files
// to struct fields tagged with "form".
func bindForm(target any, r *http.Request) error {
	multipart := isMultipart(r)
	if multipart {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return fmt.Errorf("%w: %w", ErrBindForm, err)
		}
	} else if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %w", ErrBindForm, err)
	}

	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Tag.Get("form")
		if name == "" {
			if f.Type == reflect.TypeFor[RawRequest]() {
				v.Field(i).Set(reflect.ValueOf(RawRequest{Request: r}))
			}
			continue
		}

		field := v.Field(i)

		// FileUpload fields read from the multipart file set.
		if f.Type == reflect.TypeFor[FileUpload]() {
			up, err := formFile(r, name)
			if errors.Is(err, http.ErrMissingFile) {
				continue // optional file, leave zero value
			}
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBindFile, name, err)
			}
			field.Set(reflect.ValueOf(*up))
			continue
		}

		if f.Type == reflect.TypeFor[[]FileUpload]() {
			if r.MultipartForm == nil || len(r.MultipartForm.File[name]) == 0 {
				continue
			}
			headers := r.MultipartForm.File[name]
			uploads := make([]FileUpload, 0, len(headers))
			for _, header := range headers {
				file, err := header.Open()
				if err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindFile, name, err)
				}
				uploads = append(uploads, FileUpload{
					Filename: header.Filename,
					Size:     header.Size,
					Header:   header,
					file:     file,
				})
			}
			field.Set(reflect.ValueOf(uploads))
			continue
		}

		if err := bindMultiValue(field, r.Form[name], f.Tag.Get("default")); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBindForm, name, err)
		}
	}

	return nil
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "multipart/")
}

// decodeBody decodes the request body into target using the negotiated
// decoder. Empty bodies leave the target at its zero value.
func decodeBody(r *http.Request, dec Decoder, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return dec.Decode(r.Body, target)
}
