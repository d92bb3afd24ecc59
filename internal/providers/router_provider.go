package providers

import (
	"net/http"
	"studymail/internal/structures"
)

// Middleware decorates a single route's handler.
type Middleware func(http.Handler) http.Handler

type RouterProviderInterface interface {
	Get(url string, handler http.Handler, mw ...Middleware)
	Post(url string, handler http.Handler, mw ...Middleware)
	GetRoutes() []structures.Route
	Mount(mux *http.ServeMux)
}

type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) add(method, url string, handler http.Handler, mw []Middleware) {
	// first middleware is outermost
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	rp.routes = append(rp.routes, structures.Route{
		Method:  method,
		Url:     url,
		Handler: handler,
	})
}

func (rp *RouterProvider) Get(url string, handler http.Handler, mw ...Middleware) {
	rp.add(http.MethodGet, url, handler, mw)
}

func (rp *RouterProvider) Post(url string, handler http.Handler, mw ...Middleware) {
	rp.add(http.MethodPost, url, handler, mw)
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// Mount registers every route on mux by method pattern. The mux answers a
// known path with the wrong method with 405 and an Allow header.
func (rp *RouterProvider) Mount(mux *http.ServeMux) {
	for _, route := range rp.routes {
		mux.Handle(route.Pattern(), route.Handler)
	}
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}
