package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/api/products/{id}", "418"))
	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/api/products/{id}", "418"))

	assert.Equal(t, 3.0, after-before)
	assert.Equal(t, 0.0, testutil.ToFloat64(RequestInFlight))
}

func TestHandler_ExposesBusinessCounters(t *testing.T) {
	OrdersCreated.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "storefront_shop_orders_created_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
