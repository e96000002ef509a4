package svcmap

// Service is a group of operations sharing a path prefix, middleware,
// and negotiation declarations, the mapping unit for one declared
// service. Operation-level declarations override the service's.
type Service struct {
	r      *Router
	prefix string

	middleware []Middleware

	consumes  []string
	produces  []string
	languages []string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMiddleware adds middleware applied to every operation registered
// on the service.
func WithMiddleware(mw ...Middleware) ServiceOption {
	return func(s *Service) {
		s.middleware = append(s.middleware, mw...)
	}
}

// ServiceConsumes declares the request media types every operation on
// the service accepts by default.
func ServiceConsumes(mediaTypes ...string) ServiceOption {
	return func(s *Service) {
		s.consumes = append(s.consumes, mediaTypes...)
	}
}

// ServiceProduces declares the response media types every operation on
// the service offers by default.
func ServiceProduces(mediaTypes ...string) ServiceOption {
	return func(s *Service) {
		s.produces = append(s.produces, mediaTypes...)
	}
}

// ServiceLanguages declares the response languages every operation on
// the service can represent by default.
func ServiceLanguages(tags ...string) ServiceOption {
	return func(s *Service) {
		s.languages = append(s.languages, tags...)
	}
}

// Service declares a service mounted at the given path prefix.
func (r *Router) Service(prefix string, opts ...ServiceOption) *Service {
	s := &Service{r: r, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) router() *Router { return s.r }

// resolve prefixes the pattern and fills negotiation rules the
// operation did not declare itself.
func (s *Service) resolve(rt *route) []Middleware {
	rt.pattern = s.prefix + rt.pattern
	if rt.consumes == nil {
		rt.consumes = s.consumes
	}
	if rt.produces == nil {
		rt.produces = s.produces
	}
	if rt.languages == nil {
		rt.languages = s.languages
	}
	return s.middleware
}
