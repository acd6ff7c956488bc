// internal/router/router.go
//
// Maps URL-style paths onto the three screens of the app. Paths are exact:
// no query strings, no parameters, no nesting.

package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Route identifies one screen.
type Route string

const (
	RouteIntro    Route = "/"
	RouteLogin    Route = "/login"
	RouteRegister Route = "/register"
)

// ErrUnknownRoute is returned for paths that do not map to a screen.
var ErrUnknownRoute = errors.New("router: unknown route")

var routes = []Route{RouteIntro, RouteLogin, RouteRegister}

// Routes lists every known route in menu order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Title is the human label of a route.
func (r Route) Title() string {
	switch r {
	case RouteIntro:
		return "Início"
	case RouteLogin:
		return "Login"
	case RouteRegister:
		return "Registro Rural"
	default:
		return string(r)
	}
}

// Parse resolves a path. A single trailing slash is tolerated on non-root
// paths.
func Parse(path string) (Route, error) {
	trimmed := strings.TrimSpace(path)
	if strings.ContainsAny(trimmed, "?#") {
		return "", fmt.Errorf("%w: %q carries a query or fragment", ErrUnknownRoute, path)
	}
	if len(trimmed) > 1 {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	for _, r := range routes {
		if string(r) == trimmed {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRoute, path)
}

// Router holds the current route. It keeps no history.
type Router struct {
	mu      sync.RWMutex
	current Route
}

// New starts a router at the intro screen.
func New() *Router {
	return &Router{current: RouteIntro}
}

// Current returns the active route.
func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate switches to path. The current route is unchanged on error.
func (r *Router) Navigate(path string) (Route, error) {
	route, err := Parse(path)
	if err != nil {
		return r.Current(), err
	}
	r.mu.Lock()
	r.current = route
	r.mu.Unlock()
	return route, nil
}
