package svcmap

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for parameter binding. Bind failures wrap one of these
// so callers can tell which request facet was at fault.
var (
	ErrBindPath   = errors.New("bind path")
	ErrBindQuery  = errors.New("bind query")
	ErrBindHeader = errors.New("bind header")
	ErrBindCookie = errors.New("bind cookie")
	ErrBindBody   = errors.New("bind body")
	ErrBindForm   = errors.New("bind form")
	ErrBindFile   = errors.New("bind file")
)

// StatusCoder is implemented by errors or responses that carry an HTTP
// status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string            `json:"type,omitempty"`
	Title    string            `json:"title,omitempty"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// ValidationError describes a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement
// StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// notAcceptable builds the 406 problem response for failed negotiation.
func notAcceptable(detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(http.StatusNotAcceptable),
		Status: http.StatusNotAcceptable,
		Detail: detail,
	}
}

// unsupportedMedia builds the 415 problem response for a request body
// media type the operation cannot consume.
func unsupportedMedia(contentType string) *ProblemDetail {
	return &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(http.StatusUnsupportedMediaType),
		Status: http.StatusUnsupportedMediaType,
		Detail: fmt.Sprintf("cannot consume %q", contentType),
	}
}
