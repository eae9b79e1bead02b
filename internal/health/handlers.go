package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

var draining atomic.Bool

// SetReady toggles process readiness. The server flips it off before shutdown so load
// balancers stop routing new claims to a draining instance.
func SetReady(ready bool) {
	draining.Store(!ready)
}

// Ready reports whether the process currently accepts traffic.
func Ready() bool {
	return !draining.Load()
}

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the drain flag and dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !Ready() {
		writeReadiness(w, http.StatusServiceUnavailable, readiness{Status: "draining"})
		return
	}
	if h.Checker == nil {
		writeReadiness(w, http.StatusServiceUnavailable, readiness{Status: "unconfigured"})
		return
	}
	ctx := r.Context()
	checks := map[string]string{"db": "ok", "redis": "ok"}
	if err := h.Checker.PingDB(ctx, h.dbTimeout()); err != nil {
		checks["db"] = err.Error()
	}
	if err := h.Checker.PingRedis(ctx, h.redisTimeout()); err != nil {
		checks["redis"] = err.Error()
	}
	if checks["db"] != "ok" || checks["redis"] != "ok" {
		writeReadiness(w, http.StatusServiceUnavailable, readiness{Status: "degraded", Checks: checks})
		return
	}
	writeReadiness(w, http.StatusOK, readiness{Status: "ok", Checks: checks})
}

func writeReadiness(w http.ResponseWriter, status int, body readiness) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h Handler) dbTimeout() time.Duration {
	if h.DBTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.DBTimeout
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
