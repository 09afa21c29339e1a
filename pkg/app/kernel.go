package app

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/furnivision/pkg/metrics"
	"github.com/shashiranjanraj/furnivision/pkg/middleware"
	"github.com/shashiranjanraj/furnivision/pkg/reqid"
	"github.com/shashiranjanraj/furnivision/pkg/response"
	"github.com/shashiranjanraj/furnivision/pkg/router"
	"github.com/shashiranjanraj/furnivision/pkg/session"
)

const defaultRateLimit = 200

// build constructs the router with the global middleware stack, then runs
// every route callback.
func (a *Application) build() (*router.Router, error) {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics  outermost for accurate total latency
	//  2. Recovery            catches panics before they kill the goroutine
	//  3. Request ID          inject unique ID before anything logs
	//  4. Logger              logs request_id from context
	//  5. Session             load/create the session cookie
	//  6. Authenticate        resolve the caller from bearer token or session
	//  7. CORS
	//  8. Rate limiter        reject abusers early
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Use(middleware.Authenticate)
	r.Use(middleware.CORS(middleware.CORSFromConfig()))
	if a.limit > 0 {
		r.Use(middleware.RateLimit(a.limit, time.Minute))
	}

	// Operational endpoints: no auth.
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	for _, fn := range a.routesFns {
		if err := fn(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}
