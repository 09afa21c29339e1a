package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/furnivision/pkg/metrics"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"p1", "p2", "p3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}

	got := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/api/products/{id}", "200"))
	assert.Equal(t, float64(3), got)
}

func TestObserveAI(t *testing.T) {
	before := testutil.ToFloat64(metrics.AIRequests.WithLabelValues("analyze", "error"))
	metrics.ObserveAI("analyze", errors.New("boom"), time.Now())
	after := testutil.ToFloat64(metrics.AIRequests.WithLabelValues("analyze", "error"))
	assert.Equal(t, before+1, after)
}

func TestHandlerServesRegistry(t *testing.T) {
	metrics.CatalogProducts.Set(3)
	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "furnivision_catalog_products 3")
}
