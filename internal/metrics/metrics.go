// Package metrics exposes the Prometheus collectors and the /metrics server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PredictionsTotal counts completed predictions by outcome: "model",
	// "demo" or "error".
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "envirowatch_predictions_total", Help: "Completed predictions by outcome"},
		[]string{"outcome"},
	)
	// UpstreamFailuresTotal counts exhausted fallback chains by data kind.
	UpstreamFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "envirowatch_upstream_failures_total", Help: "Fallback chains exhausted, by data kind"},
		[]string{"kind"},
	)
	// LeaderboardRefreshes counts background leaderboard refresh runs.
	LeaderboardRefreshes = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "envirowatch_leaderboard_refreshes_total", Help: "Leaderboard cache refreshes"},
	)
)

// InitAndServe registers the collectors and serves /metrics on addr. It
// blocks; run it in a goroutine.
func InitAndServe(addr string) error {
	prometheus.MustRegister(PredictionsTotal, UpstreamFailuresTotal, LeaderboardRefreshes)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
