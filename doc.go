// Package svcmap maps declared Go services onto HTTP endpoints. Handler
// types are the source of truth: request parameters, bodies, and
// responses are expressed as Go types, and the package derives parameter
// binding, content negotiation, and response shaping from them.
//
// The core handler signature removes http.ResponseWriter and *http.Request:
//
//	type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
//
// Operations are registered with package-level generic functions, either
// directly on a Router or on a Service (a group of operations sharing a
// prefix, middleware, and negotiation rules):
//
//	r := svcmap.New()
//	svc := r.Service("/v1/users", svcmap.Languages("en", "de"))
//	svcmap.Get[GetReq, User](svc, "/{id}", getUser)
//	svcmap.Post[CreateReq, svcmap.Created](svc, "", createUser)
//
// Request types use struct tags for parameter binding and a Body field
// for request bodies:
//
//	type CreateReq struct {
//	    OrgID string `path:"org_id"`
//	    Page  int    `query:"page" default:"1"`
//	    Body  struct {
//	        Name string `json:"name" required:"true"`
//	    }
//	}
//
// The dispatcher answers unknown paths with a problem-details 404,
// unregistered verbs with 405 plus an Allow header, unacceptable Accept
// or Accept-Language combinations with 406, and unsupported request
// media types with 415. Handlers signal redirect, created, and accepted
// semantics by returning the Redirect, Created, and Accepted wrappers.
//
// Middleware uses the standard func(http.Handler) http.Handler signature,
// so the whole Go middleware ecosystem works natively.
package svcmap
