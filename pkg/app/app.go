// Package app assembles the HTTP application: global middleware, the
// operational endpoints and the route callbacks registered on it.
//
//	handler, err := app.New().
//	    Routes(func(r *router.Router) error {
//	        return routes.RegisterAPI(r, container)
//	    }).
//	    Handler()
//
// Serve runs the handler until the context is cancelled.
package app

import (
	"net/http"

	"github.com/shashiranjanraj/furnivision/pkg/router"
)

// RouteFunc mounts routes on r.
type RouteFunc func(r *router.Router) error

// Application is the HTTP application under construction.
type Application struct {
	routesFns []RouteFunc
	limit     int
}

// New creates an Application with the default rate limit.
func New() *Application {
	return &Application{limit: defaultRateLimit}
}

// Routes registers a route callback. Callbacks run in registration order
// when the handler is built.
func (a *Application) Routes(fn RouteFunc) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// RateLimit sets the per-IP requests allowed per minute. Zero disables it.
func (a *Application) RateLimit(perMinute int) *Application {
	a.limit = perMinute
	return a
}

// Handler builds the full middleware stack and routes.
func (a *Application) Handler() (http.Handler, error) {
	r, err := a.build()
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

// RouteList returns every route the application mounts, for route:list.
func (a *Application) RouteList() ([]router.RouteInfo, error) {
	r, err := a.build()
	if err != nil {
		return nil, err
	}
	return r.Routes(), nil
}
