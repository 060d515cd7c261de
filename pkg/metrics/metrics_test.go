package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCheckoutResults(t *testing.T) {
	m := New()
	m.ObserveCheckout("success")
	m.ObserveCheckout("insufficient_stock")
	m.ObserveRequest("/api/v1/orders", http.MethodPost, http.StatusCreated, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `storefront_checkout_results_total{result="success"} 1`)
	assert.Contains(t, string(body), `storefront_checkout_results_total{result="insufficient_stock"} 1`)
	assert.Contains(t, string(body), `storefront_http_requests_total{method="POST",route="/api/v1/orders",status="201"} 1`)
}
