package svcmap

import (
	"fmt"
	"mime"
	"net/http"
	"reflect"
)

// Registrar is the interface accepted by the registration functions.
// Both *Router and *Service implement it.
type Registrar interface {
	router() *Router
	// resolve applies the registrar's prefix, inherited negotiation
	// rules, and middleware to a route before it is mounted.
	resolve(rt *route) []Middleware
}

func (r *Router) router() *Router { return r }

func (r *Router) resolve(*route) []Middleware { return nil }

// register is the internal generic registration function. It records
// metadata in the registry and builds the dispatch pipeline for the
// operation.
func register[Req, Resp any](reg Registrar, method, pattern string, fn Handler[Req, Resp], opts ...RouteOption) {
	rt := &route{
		method:   method,
		pattern:  pattern,
		reqType:  reflect.TypeFor[Req](),
		respType: reflect.TypeFor[Resp](),
	}

	for _, opt := range opts {
		opt(rt)
	}

	mw := reg.resolve(rt)

	if rt.status == 0 {
		if rt.respType == reflect.TypeFor[Void]() {
			rt.status = http.StatusNoContent
		} else {
			rt.status = http.StatusOK
		}
	}
	if rt.name == "" {
		rt.name = method + " " + rt.pattern
	}

	r := reg.router()
	rt.handler = buildPipeline(r, rt, fn)

	// Service-level middleware wraps the pipeline, innermost last added.
	for i := len(mw) - 1; i >= 0; i-- {
		rt.handler = mw[i](rt.handler)
	}

	r.mount(rt)
}

// buildPipeline wraps a typed Handler into an http.Handler running the
// per-request pipeline: negotiate, bind, validate, invoke, shape.
func buildPipeline[Req, Resp any](r *Router, rt *route, fn Handler[Req, Resp]) http.Handler {
	langs := newLangSet(rt.languages)
	shape := classifyRequest(reflect.TypeFor[Req]())

	writeErr := func(w http.ResponseWriter, req *http.Request, err error) {
		if r.errorHandler != nil {
			r.errorHandler(w, req, err)
			return
		}
		writeErrorResponse(w, err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if rt.bodyLimit > 0 && req.Body != nil {
			req.Body = http.MaxBytesReader(w, req.Body, rt.bodyLimit)
		}

		// Response representation first: a request we cannot answer
		// acceptably is rejected before any work happens.
		enc, ok := negotiateEncoder(req.Header.Get("Accept"), r.codecs.offers(rt.produces))
		if !ok {
			writeErr(w, req, notAcceptable(fmt.Sprintf("no representation satisfies Accept %q", req.Header.Get("Accept"))))
			return
		}

		var lang string
		if langs != nil {
			lang, ok = langs.negotiate(req.Header.Get("Accept-Language"))
			if !ok {
				writeErr(w, req, notAcceptable(fmt.Sprintf("no language satisfies Accept-Language %q", req.Header.Get("Accept-Language"))))
				return
			}
			req = req.WithContext(withLanguage(req.Context(), lang))
		}

		// Request representation: resolve the body decoder and enforce
		// declared consumes.
		dec, err := r.requestDecoder(rt, shape, req)
		if err != nil {
			writeErr(w, req, err)
			return
		}

		bound, err := bindRequest[Req](req, dec)
		if err != nil {
			writeErr(w, req, &ProblemDetail{
				Type:   "about:blank",
				Title:  http.StatusText(http.StatusBadRequest),
				Status: http.StatusBadRequest,
				Detail: err.Error(),
			})
			return
		}

		if err := validateConstraints(bound); err != nil {
			writeErr(w, req, err)
			return
		}
		if sv, ok := any(bound).(SelfValidator); ok {
			if err := sv.Validate(); err != nil {
				writeErr(w, req, err)
				return
			}
		}
		if r.validator != nil {
			if err := r.validator.Validate(bound); err != nil {
				writeErr(w, req, err)
				return
			}
		}

		resp, err := fn(req.Context(), bound)
		if err != nil {
			writeErr(w, req, err)
			return
		}

		if resp == nil {
			if lang != "" {
				w.Header().Set("Content-Language", lang)
			}
			w.WriteHeader(rt.status)
			return
		}

		encodeResponse(w, req, resp, rt.status, enc, lang)
	})
}

// requestDecoder resolves the body decoder for a request, rejecting
// media types the operation does not consume. Shapes without a decoded
// body resolve to (nil, nil).
func (r *Router) requestDecoder(rt *route, shape requestShape, req *http.Request) (Decoder, error) {
	hasBody := req.ContentLength != 0 && req.Body != nil

	mediaType := ""
	if ct := req.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, unsupportedMedia(ct)
		}
		mediaType = mt
	}

	if hasBody && len(rt.consumes) > 0 && mediaType != "" {
		allowed := false
		for _, ct := range rt.consumes {
			if ct == mediaType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, unsupportedMedia(mediaType)
		}
	}

	if shape != shapeBodyOnly && shape != shapeMixed {
		return nil, nil
	}
	if !hasBody {
		dec, _ := r.codecs.decoderFor("") // JSON default
		return dec, nil
	}

	dec, ok := r.codecs.decoderFor(mediaType)
	if !ok {
		return nil, unsupportedMedia(mediaType)
	}
	return dec, nil
}

// Get registers a GET operation.
func Get[Req, Resp any](reg Registrar, pattern string, fn Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, fn, opts...)
}

// Post registers a POST operation.
func Post[Req, Resp any](reg Registrar, pattern string, fn Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, fn, opts...)
}

// Put registers a PUT operation.
func Put[Req, Resp any](reg Registrar, pattern string, fn Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, fn, opts...)
}

// Patch registers a PATCH operation.
func Patch[Req, Resp any](reg Registrar, pattern string, fn Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, fn, opts...)
}

// Delete registers a DELETE operation.
func Delete[Req, Resp any](reg Registrar, pattern string, fn Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, fn, opts...)
}

// Raw registers a raw http.Handler, bypassing binding and negotiation.
func Raw(reg Registrar, method, pattern string, h RawHandler, opts ...RouteOption) {
	rt := &route{
		method:  method,
		pattern: pattern,
		handler: http.HandlerFunc(h),
	}
	for _, opt := range opts {
		opt(rt)
	}
	mw := reg.resolve(rt)
	if rt.name == "" {
		rt.name = method + " " + rt.pattern
	}
	for i := len(mw) - 1; i >= 0; i-- {
		rt.handler = mw[i](rt.handler)
	}
	reg.router().mount(rt)
}
