package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Loan    *LoanHandler
	Advisor *AdvisorHandler
	Limiter *RateLimiter
}

// NewRouter registers every route. POST endpoints go through the rate limiter.
func NewRouter(h Handlers) *http.ServeMux {
	limited := func(fn http.HandlerFunc) http.Handler {
		return RateLimitMiddleware(h.Limiter, fn)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Loan.Index)
	mux.Handle("/predict", limited(h.Loan.Predict))
	mux.Handle("/api/predict", limited(h.Loan.PredictJSON))
	mux.Handle("/api/advisor", limited(h.Advisor.Advise))
	mux.HandleFunc("/healthz", Health)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
