package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordImport(t *testing.T) {
	before := testutil.ToFloat64(importsTotal.WithLabelValues(ResultOK))
	RecordImport(ResultOK)
	assert.Equal(t, before+1, testutil.ToFloat64(importsTotal.WithLabelValues(ResultOK)))

	RecordBlocks("card", 3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(importBlocksTotal.WithLabelValues("card")), 3.0)
}

func TestMiddlewareUsesPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Middleware(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /api/boards/{id}", "418"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boards/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /api/boards/{id}", "418")))
}
