package svcmap

import (
	"fmt"
	"net/http"
	"slices"
	"sync"
)

// registry is the in-memory table mapping registered patterns to the
// operations declared on them. It is populated once at registration time
// and read on every dispatch.
type registry struct {
	mu       sync.RWMutex
	patterns map[string]map[string]*route // pattern → method → route
	order    []string                     // patterns in registration order
}

func newRegistry() *registry {
	return &registry{patterns: make(map[string]map[string]*route)}
}

// add records a route and reports whether it is the first operation on
// its pattern (meaning the mux entry still has to be created).
// Registering the same method and pattern twice is a programming error
// and panics, matching mux semantics.
func (rg *registry) add(rt *route) (first bool) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	methods, ok := rg.patterns[rt.pattern]
	if !ok {
		methods = make(map[string]*route)
		rg.patterns[rt.pattern] = methods
		rg.order = append(rg.order, rt.pattern)
	}
	if _, dup := methods[rt.method]; dup {
		panic(fmt.Sprintf("svcmap: duplicate registration for %s %s", rt.method, rt.pattern))
	}
	methods[rt.method] = rt
	return !ok
}

// lookup resolves the route for a verb on a pattern. HEAD falls back to
// GET when no HEAD handler is registered; net/http strips the body.
func (rg *registry) lookup(pattern, method string) (*route, bool) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()

	methods, ok := rg.patterns[pattern]
	if !ok {
		return nil, false
	}
	if rt, ok := methods[method]; ok {
		return rt, true
	}
	if method == http.MethodHead {
		if rt, ok := methods[http.MethodGet]; ok {
			return rt, true
		}
	}
	return nil, false
}

// allow returns the sorted verb list for the Allow header on a pattern.
// HEAD rides along with GET and OPTIONS is always answerable.
func (rg *registry) allow(pattern string) []string {
	rg.mu.RLock()
	defer rg.mu.RUnlock()

	methods, ok := rg.patterns[pattern]
	if !ok {
		return nil
	}

	verbs := make([]string, 0, len(methods)+2)
	for m := range methods {
		verbs = append(verbs, m)
	}
	if _, ok := methods[http.MethodGet]; ok {
		if _, head := methods[http.MethodHead]; !head {
			verbs = append(verbs, http.MethodHead)
		}
	}
	if _, ok := methods[http.MethodOptions]; !ok {
		verbs = append(verbs, http.MethodOptions)
	}
	slices.Sort(verbs)
	return verbs
}

// routes returns a snapshot of all registered operations in registration
// order.
func (rg *registry) routes() []RouteInfo {
	rg.mu.RLock()
	defer rg.mu.RUnlock()

	var infos []RouteInfo
	for _, pattern := range rg.order {
		methods := rg.patterns[pattern]
		verbs := make([]string, 0, len(methods))
		for m := range methods {
			verbs = append(verbs, m)
		}
		slices.Sort(verbs)
		for _, m := range verbs {
			infos = append(infos, methods[m].info())
		}
	}
	return infos
}
