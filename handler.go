package svcmap

import (
	"context"
	"net/http"
)

// Void is used as a type parameter when a request carries no parameters
// or body, or when a response has no body (results in 204 No Content).
type Void struct{}

// Handler is the typed operation signature. The dispatcher owns binding
// and serialization; handlers never see http.ResponseWriter or
// *http.Request.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)

// RawHandler is an escape hatch for WebSocket upgrades or anything that
// needs the underlying http primitives directly.
type RawHandler func(w http.ResponseWriter, r *http.Request)

// RawRequest can be embedded in a request type to have the underlying
// *http.Request injected at bind time.
type RawRequest struct {
	Request *http.Request
}
