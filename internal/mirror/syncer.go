package mirror

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"aahaara-data/internal/logger"
	"aahaara-data/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const payloadLogLimit = 256

// Record is one canonical entity prepared for the mirror.
type Record struct {
	Table       string
	CanonicalID string
	Fields      Row
}

// Syncer performs best-effort idempotent upserts. It never returns an error: the caller
// learns the mirror id on success and ok=false otherwise, and the canonical write stands.
type Syncer struct {
	store     Store
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
	available atomic.Bool
	newID     func() string
}

// NewSyncer wraps store. A nil store yields a permanently unavailable syncer.
// m may be nil.
func NewSyncer(store Store, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Syncer {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Syncer{
		store:   store,
		timeout: timeout,
		logger:  logger,
		metrics: m,
		newID:   uuid.NewString,
	}
}

// CheckReachable checks reachability once and records the result. Called at startup; until a
// check succeeds every Sync returns ok=false without touching the network.
func (s *Syncer) CheckReachable(ctx context.Context) bool {
	if s.store == nil {
		s.available.Store(false)
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Mirror store unreachable, syncing disabled until next check", zap.Error(err))
		s.available.Store(false)
		return false
	}
	s.available.Store(true)
	s.logger.Info("Mirror store reachable")
	return true
}

func (s *Syncer) Available() bool {
	return s != nil && s.available.Load()
}

// Sync looks up rec by canonical id, updates the existing mirror row or inserts a new
// one with a fresh id, and returns that mirror id.
func (s *Syncer) Sync(ctx context.Context, rec Record) (mirrorID string, ok bool) {
	if !s.Available() {
		s.observe(rec.Table, "skip", "unavailable", 0)
		if s != nil {
			s.logger.Debug("Mirror sync skipped, store unavailable",
				zap.String("table", rec.Table),
				zap.String("canonical_id", rec.CanonicalID),
			)
		}
		return "", false
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	op := "select"
	existing, found, err := s.store.FindByCanonicalID(ctx, rec.Table, rec.CanonicalID)
	if err == nil {
		row := rec.row()
		if found {
			op = "update"
			err = s.store.Update(ctx, rec.Table, rec.CanonicalID, row)
			mirrorID = existing
		} else {
			op = "insert"
			mirrorID = s.newID()
			row["id"] = mirrorID
			err = s.store.Insert(ctx, rec.Table, row)
		}
	}

	if err != nil {
		s.observe(rec.Table, op, "failure", time.Since(start))
		s.logger.Error("Mirror sync failed",
			zap.String("op", op),
			zap.String("table", rec.Table),
			zap.String("canonical_id", rec.CanonicalID),
			zap.String("payload", rec.payload()),
			zap.Error(err),
		)
		return "", false
	}

	s.observe(rec.Table, op, "success", time.Since(start))
	s.logger.Debug("Mirror sync succeeded",
		zap.String("op", op),
		zap.String("table", rec.Table),
		zap.String("canonical_id", rec.CanonicalID),
		zap.String("mirror_id", mirrorID),
	)
	return mirrorID, true
}

// Remove deletes the mirror row for a deleted canonical record. Best effort.
func (s *Syncer) Remove(ctx context.Context, table, canonicalID string) bool {
	if !s.Available() {
		s.observe(table, "delete", "unavailable", 0)
		return false
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Delete(ctx, table, canonicalID); err != nil {
		s.observe(table, "delete", "failure", time.Since(start))
		s.logger.Error("Mirror delete failed",
			zap.String("table", table),
			zap.String("canonical_id", canonicalID),
			zap.Error(err),
		)
		return false
	}
	s.observe(table, "delete", "success", time.Since(start))
	return true
}

func (s *Syncer) observe(table, op, result string, d time.Duration) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.MirrorSyncs.WithLabelValues(table, op, result).Inc()
	if d > 0 {
		s.metrics.MirrorSyncDuration.WithLabelValues(table).Observe(d.Seconds())
	}
}

// row copies the mapped fields and stamps the back-reference.
func (r Record) row() Row {
	out := make(Row, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[ColumnCanonicalID] = r.CanonicalID
	return out
}

func (r Record) payload() string {
	b, err := json.Marshal(r.Fields)
	if err != nil {
		return ""
	}
	return logger.Truncate(string(b), payloadLogLimit)
}
