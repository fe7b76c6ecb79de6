package session

import (
	"net/url"
	"strings"
	"sync"
)

// Route is a screen path, e.g. "/login" or "/wrapped-detail/42".
type Route string

const (
	RouteLogin    Route = "/login"
	RouteRegister Route = "/register"
	RouteHome     Route = "/"
	RouteDetail   Route = "/wrapped-detail"
	RouteGame     Route = "/game"
	RouteCallback Route = "/callback"
)

// DetailRoute returns the detail route for a snapshot id.
func DetailRoute(id string) Route {
	return Route(string(RouteDetail) + "/" + url.PathEscape(id))
}

// Base strips any parameter, so DetailRoute("7").Base() == RouteDetail.
func (r Route) Base() Route {
	if strings.HasPrefix(string(r), string(RouteDetail)+"/") {
		return RouteDetail
	}
	return r
}

// Param returns the parameter of a parameterized route.
func (r Route) Param() string {
	p, ok := strings.CutPrefix(string(r), string(RouteDetail)+"/")
	if !ok {
		return ""
	}
	if v, err := url.PathUnescape(p); err == nil {
		return v
	}
	return p
}

// Protected reports whether the route requires a session.
func (r Route) Protected() bool {
	switch r.Base() {
	case RouteHome, RouteDetail:
		return true
	}
	return false
}

func (r Route) String() string { return string(r) }

// Navigator moves the user to a route.
type Navigator interface {
	Navigate(Route)
}

// History is a [Navigator] that records every navigation.
type History struct {
	mu     sync.Mutex
	routes []Route
	// OnNavigate, when set, is called after each navigation.
	OnNavigate func(Route)
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Navigate(r Route) {
	h.mu.Lock()
	h.routes = append(h.routes, r)
	fn := h.OnNavigate
	h.mu.Unlock()

	if fn != nil {
		fn(r)
	}
}

// Current returns the last route navigated to, or "" if none.
func (h *History) Current() Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.routes) == 0 {
		return ""
	}
	return h.routes[len(h.routes)-1]
}

// Routes returns a copy of the navigation history.
func (h *History) Routes() []Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Route(nil), h.routes...)
}
