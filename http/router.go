package http

import "sort"

type Handler func(req *Request) Result

// Router is an ordered route table. Routes with more path segments are
// always tried before routes with fewer; equal counts keep registration
// order. Register everything before the server starts accepting.
type Router struct {
	Routes     []Route
	Middleware []Middleware

	catchall Handler
}

func NewRouter() Router {
	return Router{
		Routes: make([]Route, 0),
	}
}

func (router *Router) GET(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodGet}, path, handler, middleware...)
}

func (router *Router) HEAD(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodHead}, path, handler, middleware...)
}

func (router *Router) POST(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodPost}, path, handler, middleware...)
}

func (router *Router) PUT(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodPut}, path, handler, middleware...)
}

func (router *Router) PATCH(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodPatch}, path, handler, middleware...)
}

func (router *Router) DELETE(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodDelete}, path, handler, middleware...)
}

func (router *Router) OPTIONS(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{MethodOptions}, path, handler, middleware...)
}

func (router *Router) Any(methods []string, path string, handler Handler, middleware ...Middleware) {
	for _, middleware := range middleware {
		handler = middleware(handler)
	}

	router.add(NewRoute(path, methods, handler))
}

func (router *Router) add(route Route) {
	router.Routes = append(router.Routes, route)

	// descending segment count so the longer patterns are tried first
	sort.SliceStable(router.Routes, func(i, j int) bool {
		return router.Routes[i].SegmentCount() > router.Routes[j].SegmentCount()
	})
}

func (router *Router) Group(path string, groupFunc func(group *Router), middlewareList ...Middleware) {
	group := NewRouter()

	groupFunc(&group)

	for _, route := range group.Routes {
		handler := route.Handler
		for _, middleware := range middlewareList {
			handler = middleware(handler)
		}

		router.add(NewRoute(path+route.Pattern, route.Methods, handler))
	}
}

// Catchall sets the handler used when no route matches.
func (router *Router) Catchall(handler Handler) {
	router.catchall = handler
}

func (router *Router) Lookup(req *Request) (*Route, bool) {
	for i := range router.Routes {
		if router.Routes[i].Matches(req.Method, req.Path) {
			return &router.Routes[i], true
		}
	}
	return nil, false
}

// Resolve picks the handler for req: the matching route, then the
// catchall, then NotFoundHandler. Path parameters are stored on req. The
// returned route is nil when nothing matched.
func (router *Router) Resolve(req *Request) (Handler, *Route) {
	var handler Handler
	route, found := router.Lookup(req)
	if found {
		req.Params = route.Params(req.Path)
		handler = route.Handler
	} else if router.catchall != nil {
		handler = router.catchall
	} else {
		handler = NotFoundHandler
	}

	for _, middleware := range router.Middleware {
		handler = middleware(handler)
	}
	return handler, route
}
