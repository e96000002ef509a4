package svcmap

import (
	"encoding/json"
	"errors"
	"net/http"
)

// CookieSetter is optionally implemented by response types to set cookies.
type CookieSetter interface {
	Cookies() []*http.Cookie
}

// HeaderSetter is optionally implemented by response types to set
// response headers.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// Redirect is returned from a handler to issue an HTTP redirect.
// Status defaults to 302 Found.
type Redirect struct {
	URL    string
	Status int
}

// Created is returned from a handler to signal that a new resource was
// created: 201 plus a Location header, with an optionally encoded body.
type Created struct {
	Location string
	Body     any
}

// Accepted is returned from a handler to signal that the request was
// taken for asynchronous processing: 202, with an optionally encoded
// body (typically a status resource).
type Accepted struct {
	Body any
}

// encodeResponse writes a handler result to the wire using the
// negotiated encoder. It handles the Redirect, Created, and Accepted
// wrappers, Void (default status, usually 204), and the CookieSetter,
// HeaderSetter, and StatusCoder hooks.
func encodeResponse(w http.ResponseWriter, r *http.Request, resp any, defaultStatus int, enc Encoder, lang string) {
	if rd, ok := resp.(*Redirect); ok {
		status := rd.Status
		if status == 0 {
			status = http.StatusFound
		}
		http.Redirect(w, r, rd.URL, status)
		return
	}

	status := defaultStatus
	body := resp

	switch v := resp.(type) {
	case *Created:
		status = http.StatusCreated
		body = v.Body
		if v.Location != "" {
			w.Header().Set("Location", v.Location)
		}
	case *Accepted:
		status = http.StatusAccepted
		body = v.Body
	}

	// Cookies and headers go out before the status line.
	if cs, ok := resp.(CookieSetter); ok {
		for _, c := range cs.Cookies() {
			http.SetCookie(w, c)
		}
	}
	if hs, ok := resp.(HeaderSetter); ok {
		hs.SetHeaders(w.Header())
	}
	if sc, ok := resp.(StatusCoder); ok {
		status = sc.StatusCode()
	}

	if lang != "" {
		w.Header().Set("Content-Language", lang)
	}

	if body == nil || isVoid(body) {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort after WriteHeader
	enc.Encode(w, body)
}

func isVoid(v any) bool {
	_, ok := v.(*Void)
	return ok
}

// writeErrorResponse writes an error as an RFC 9457 problem details
// response. Errors are always problem+json regardless of Accept.
func writeErrorResponse(w http.ResponseWriter, err error) {
	var pd *ProblemDetail
	if !errors.As(err, &pd) {
		status := ErrorStatus(err)
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		}
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(pd)
}
