package svcmap

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Router is the dispatcher: it holds the metadata registry, the codec
// set, middleware, and configuration, and implements http.Handler.
type Router struct {
	mux      *http.ServeMux
	registry *registry
	codecs   *codecSet

	middleware []Middleware

	validator    Validator
	errorHandler ErrorHandler
}

// RouterOption configures a Router.
type RouterOption func(*routerConfig)

type routerConfig struct {
	validator    Validator
	errorHandler ErrorHandler
	encoders     []Encoder
	decoders     []Decoder
}

// ErrorHandler is a custom error response writer.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WithValidator sets a router-wide request validator.
func WithValidator(v Validator) RouterOption {
	return func(c *routerConfig) {
		c.validator = v
	}
}

// WithErrorHandler sets a custom error handler for the router.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(c *routerConfig) {
		c.errorHandler = h
	}
}

// WithEncoder registers an additional response encoder.
func WithEncoder(enc Encoder) RouterOption {
	return func(c *routerConfig) {
		c.encoders = append(c.encoders, enc)
	}
}

// WithDecoder registers an additional request body decoder.
func WithDecoder(dec Decoder) RouterOption {
	return func(c *routerConfig) {
		c.decoders = append(c.decoders, dec)
	}
}

// New creates a Router with the given options.
func New(opts ...RouterOption) *Router {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Router{
		mux:          http.NewServeMux(),
		registry:     newRegistry(),
		codecs:       newCodecSet(cfg.encoders, cfg.decoders),
		validator:    cfg.validator,
		errorHandler: cfg.errorHandler,
	}
}

// Use adds middleware to the router. Middleware is applied in the order
// added, outermost first.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Routes returns the registered operations in registration order.
func (r *Router) Routes() []RouteInfo {
	return r.registry.routes()
}

// ServeHTTP implements http.Handler. Requests matching no registered
// pattern are answered with a problem-details 404 rather than the host
// mux's plain-text handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(http.HandlerFunc(r.dispatch))
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	_, pattern := r.mux.Handler(req)
	if pattern == "" {
		r.writeError(w, req, &ProblemDetail{
			Type:     "about:blank",
			Title:    http.StatusText(http.StatusNotFound),
			Status:   http.StatusNotFound,
			Detail:   "no resource matches the request path",
			Instance: req.URL.Path,
		})
		return
	}
	r.mux.ServeHTTP(w, req)
}

// mount records a route in the registry and, for the first operation on
// a pattern, installs the per-pattern dispatch handler on the mux.
func (r *Router) mount(rt *route) {
	if r.registry.add(rt) {
		pattern := rt.pattern
		r.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.dispatchPattern(pattern, w, req)
		}))
	}
}

// dispatchPattern resolves the verb on a matched pattern: invoke the
// registered operation, answer OPTIONS automatically, or report 405
// with an Allow header listing the supported verbs.
func (r *Router) dispatchPattern(pattern string, w http.ResponseWriter, req *http.Request) {
	if rt, ok := r.registry.lookup(pattern, req.Method); ok {
		rt.handler.ServeHTTP(w, req)
		return
	}

	allow := strings.Join(r.registry.allow(pattern), ", ")

	if req.Method == http.MethodOptions {
		w.Header().Set("Allow", allow)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Allow", allow)
	r.writeError(w, req, &ProblemDetail{
		Type:     "about:blank",
		Title:    http.StatusText(http.StatusMethodNotAllowed),
		Status:   http.StatusMethodNotAllowed,
		Detail:   req.Method + " is not supported by this resource",
		Instance: req.URL.Path,
	})
}

func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	if r.errorHandler != nil {
		r.errorHandler(w, req, err)
		return
	}
	writeErrorResponse(w, err)
}

// ListenAndServe starts an HTTP server on the given address. It blocks
// until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
