package server

import (
	"net/http"

	"github.com/justinas/alice"
)

// BasicRouter is the [Router] behind the callback listener.
//
// Routes are registered on an [http.ServeMux] using method patterns, so a request with the wrong
// method gets 405 from the mux itself. Middleware added with [BasicRouter.Use] wraps every route
// registered after it.
type BasicRouter struct {
	mux   *http.ServeMux
	chain alice.Chain
}

func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux(), chain: alice.New()}
}

// Use appends middleware; the first added runs outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	for _, m := range middleware {
		r.chain = r.chain.Append(alice.Constructor(m))
	}
}

// Handle serves handler for method and path only.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(method+" "+path, r.chain.Then(handler))
}

// Handler serves every path returned by handler's Routes, for any method.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.chain.Then(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
