package mirror

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerStore fails fast while the mirror is repeatedly erroring, so an outage does not
// add the full mirror timeout to every canonical write.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

var _ Store = (*BreakerStore)(nil)

// NewBreakerStore trips after failures consecutive errors and half-opens after cooldown.
func NewBreakerStore(next Store, failures uint32, cooldown time.Duration, logger *zap.Logger) *BreakerStore {
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        "mirror-store",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Mirror circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerStore) State() gobreaker.State { return b.cb.State() }

func (b *BreakerStore) FindByCanonicalID(ctx context.Context, table, canonicalID string) (string, bool, error) {
	type found struct {
		id string
		ok bool
	}
	v, err := b.cb.Execute(func() (interface{}, error) {
		id, ok, err := b.next.FindByCanonicalID(ctx, table, canonicalID)
		return found{id, ok}, err
	})
	if err != nil {
		return "", false, err
	}
	f := v.(found)
	return f.id, f.ok, nil
}

func (b *BreakerStore) Insert(ctx context.Context, table string, row Row) error {
	return b.run(func() error { return b.next.Insert(ctx, table, row) })
}

func (b *BreakerStore) Update(ctx context.Context, table, canonicalID string, row Row) error {
	return b.run(func() error { return b.next.Update(ctx, table, canonicalID, row) })
}

func (b *BreakerStore) Delete(ctx context.Context, table, canonicalID string) error {
	return b.run(func() error { return b.next.Delete(ctx, table, canonicalID) })
}

// Ping bypasses the breaker so the availability check always reaches the store.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *BreakerStore) run(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}
