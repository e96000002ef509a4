package svcmap

import (
	"net/http"
	"reflect"
)

// route holds the metadata recorded for one registered operation. It is
// what the registry stores and what the dispatcher consults per request.
type route struct {
	method  string
	pattern string
	name    string

	status    int
	consumes  []string // acceptable request media types; nil = any decodable
	produces  []string // offered response media types; nil = all encoders
	languages []string // representable languages; nil = no language negotiation

	bodyLimit int64

	reqType  reflect.Type
	respType reflect.Type

	handler http.Handler
}

// RouteOption configures an operation at registration time.
type RouteOption func(*route)

// WithStatus sets the default HTTP status code for successful responses.
func WithStatus(code int) RouteOption {
	return func(rt *route) {
		rt.status = code
	}
}

// WithName sets the operation name used in logs and introspection.
// Defaults to "METHOD pattern".
func WithName(name string) RouteOption {
	return func(rt *route) {
		rt.name = name
	}
}

// Consumes declares the request media types the operation accepts.
// Requests with a body of any other type are rejected with 415.
func Consumes(mediaTypes ...string) RouteOption {
	return func(rt *route) {
		rt.consumes = append(rt.consumes, mediaTypes...)
	}
}

// Produces declares the response media types the operation can emit,
// narrowing the router's encoder set for Accept negotiation.
func Produces(mediaTypes ...string) RouteOption {
	return func(rt *route) {
		rt.produces = append(rt.produces, mediaTypes...)
	}
}

// Languages declares the languages the operation can represent its
// responses in. Accept-Language is matched against them; no match is
// rejected with 406. Tags use BCP 47 form ("en", "de-CH").
func Languages(tags ...string) RouteOption {
	return func(rt *route) {
		rt.languages = append(rt.languages, tags...)
	}
}

// WithBodyLimit sets a per-operation maximum request body size in bytes.
func WithBodyLimit(maxBytes int64) RouteOption {
	return func(rt *route) {
		rt.bodyLimit = maxBytes
	}
}

// RouteInfo is the read-only view of a registered operation exposed by
// Router.Routes.
type RouteInfo struct {
	Method    string
	Pattern   string
	Name      string
	Status    int
	Consumes  []string
	Produces  []string
	Languages []string
}

func (rt *route) info() RouteInfo {
	return RouteInfo{
		Method:    rt.method,
		Pattern:   rt.pattern,
		Name:      rt.name,
		Status:    rt.status,
		Consumes:  rt.consumes,
		Produces:  rt.produces,
		Languages: rt.languages,
	}
}
