package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MirrorChecker is satisfied by *mirror.Syncer.
type MirrorChecker interface {
	CheckReachable(ctx context.Context) bool
	Available() bool
}

// HealthHandler reports canonical store and mirror reachability.
type HealthHandler struct {
	db     Pinger
	mirror MirrorChecker
	logger *zap.Logger
}

func NewHealthHandler(db Pinger, mirror MirrorChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, mirror: mirror, logger: logger}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Mirror   string `json:"mirror"`
}

// Health is 200 while the canonical store answers, even with the mirror down.
// An unavailable mirror is checked again so syncing resumes once it comes back.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st := healthStatus{Status: "ok", Database: "ok", Mirror: "available"}
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("Health check: database unreachable", zap.Error(err))
		st.Status, st.Database = "unavailable", "unreachable"
	}
	switch {
	case h.mirror == nil:
		st.Mirror = "disabled"
	case !h.mirror.Available() && !h.mirror.CheckReachable(ctx):
		st.Mirror = "unavailable"
		if st.Status == "ok" {
			st.Status = "degraded"
		}
	}

	status := http.StatusOK
	if st.Database != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, Ok(st))
}
