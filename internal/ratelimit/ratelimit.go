package ratelimit

import (
	"net/http"
	"time"

	"mechanic-service/internal/config"
	"mechanic-service/internal/httputil"
	"mechanic-service/internal/metrics"

	"github.com/go-chi/httprate"
)

// Limits holds one admission-control middleware per mutating endpoint
// class. Each ceiling is tracked independently per client address; an
// over-limit request is rejected immediately with 429 and no side
// effects - there is no queue.
type Limits struct {
	CustomerCreate func(http.Handler) http.Handler
	MechanicCreate func(http.Handler) http.Handler
	PartCreate     func(http.Handler) http.Handler
	TicketCreate   func(http.Handler) http.Handler
}

func New(cfg config.RateLimitConfig, m *metrics.Metrics) Limits {
	return Limits{
		CustomerCreate: perMinute(cfg.CustomerCreatePerMin, m),
		MechanicCreate: perMinute(cfg.MechanicCreatePerMin, m),
		PartCreate:     perMinute(cfg.PartCreatePerMin, m),
		TicketCreate:   perMinute(cfg.TicketCreatePerMin, m),
	}
}

func perMinute(requests int, m *metrics.Metrics) func(http.Handler) http.Handler {
	return httprate.Limit(requests, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			m.RecordRequestThrottled(r.Context())
			httputil.RespondWithError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}
