package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestMetricsCollector_CountsRequestsErrorsAndInFlight(t *testing.T) {
	var reqs, errs, inFlight atomic.Int64
	mc := NewMetricsCollector(&reqs, &errs, &inFlight)

	var observed int64
	h := mc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observed = inFlight.Load()
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	if got := reqs.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
	if got := errs.Load(); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if observed != 1 {
		t.Fatalf("expected in-flight gauge of 1 during handling, got %d", observed)
	}
	if got := inFlight.Load(); got != 0 {
		t.Fatalf("expected in-flight gauge to return to 0, got %d", got)
	}
}
