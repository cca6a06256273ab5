package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/middleware"
)

// A Route maps a path and HTTP methods to an [http.Handler].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	Path        string
	Methods     []string
	Handler     http.Handler
	Middlewares []middleware.Adapter
}

// Router routes requests to their handlers,
// wrapping every handler in the same middleware stack.
type Router struct {
	Env           trailhead.Environment
	everyReqStack []middleware.Adapter
	r             *mux.Router
}

// New constructs a [*Router] for the given environment.
func New(env trailhead.Environment) *Router {
	return &Router{Env: env, r: mux.NewRouter()}
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.Handler] as the default handler
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.Handler) {
	r.r.NotFoundHandler = r.wrap(handler)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := make([]middleware.Adapter, 0, len(middlewares)+len(route.Middlewares))
		mws = append(mws, middlewares...)
		mws = append(mws, route.Middlewares...)

		mr := r.r.Handle(route.Path, r.wrap(route.Handler, mws...))
		if len(route.Methods) > 0 {
			mr.Methods(route.Methods...)
		}
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
// Only routes registered afterward get them.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix.
//
// e.g., r.Subrouter("/api/v1") handles requests to endpoints like /api/v1/stations
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		Env:           r.Env,
		r:             r.r.PathPrefix(prefix).Subrouter(),
		everyReqStack: append([]middleware.Adapter(nil), r.everyReqStack...),
	}
}

// wrap chains the every-request stack, then mws, around handler,
// with panics reported innermost.
func (r *Router) wrap(handler http.Handler, mws ...middleware.Adapter) http.Handler {
	stack := make([]middleware.Adapter, 0, len(r.everyReqStack)+len(mws))
	stack = append(stack, r.everyReqStack...)
	stack = append(stack, mws...)

	return middleware.Chain(middleware.ReportPanic(r.Env)(handler), stack...)
}
