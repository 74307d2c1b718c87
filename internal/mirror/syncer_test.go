package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingStore errors on the configured operation.
type failingStore struct {
	*MemoryStore
	failFind, failWrite, failPing bool
	findCalls                     int
}

func (f *failingStore) FindByCanonicalID(ctx context.Context, table, id string) (string, bool, error) {
	f.findCalls++
	if f.failFind {
		return "", false, errors.New("connection refused")
	}
	return f.MemoryStore.FindByCanonicalID(ctx, table, id)
}

func (f *failingStore) Insert(ctx context.Context, table string, row Row) error {
	if f.failWrite {
		return errors.New("status 500")
	}
	return f.MemoryStore.Insert(ctx, table, row)
}

func (f *failingStore) Ping(ctx context.Context) error {
	if f.failPing {
		return errors.New("dial timeout")
	}
	return nil
}

func newTestSyncer(t *testing.T, store Store) (*Syncer, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	s := NewSyncer(store, time.Second, zap.NewNop(), m)
	return s, m
}

func TestSync_IdempotentUpsert(t *testing.T) {
	store := NewMemoryStore()
	s, m := newTestSyncer(t, store)
	require.True(t, s.CheckReachable(context.Background()))

	u := &domain.User{UserID: "U1", Username: "asha", Email: "asha@example.com", Role: domain.RolePatient, FirstName: "Asha"}

	id1, ok := s.Sync(context.Background(), UserRecord(u))
	require.True(t, ok)
	require.NotEmpty(t, id1)

	rows := store.Rows(TableUsers, "U1")
	require.Len(t, rows, 1)
	assert.Equal(t, "U1", rows[0][ColumnCanonicalID])
	assert.Equal(t, id1, rows[0]["id"])
	assert.Equal(t, "Asha", rows[0]["first_name"])

	u.FirstName = "Asha Devi"
	id2, ok := s.Sync(context.Background(), UserRecord(u))
	require.True(t, ok)
	assert.Equal(t, id1, id2)

	rows = store.Rows(TableUsers, "U1")
	require.Len(t, rows, 1)
	assert.Equal(t, "Asha Devi", rows[0]["first_name"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MirrorSyncs.WithLabelValues(TableUsers, "insert", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MirrorSyncs.WithLabelValues(TableUsers, "update", "success")))
}

func TestSync_MirrorIDIsNotCanonicalID(t *testing.T) {
	store := NewMemoryStore()
	s, _ := newTestSyncer(t, store)
	s.newID = func() string { return "mirror-1" }
	require.True(t, s.CheckReachable(context.Background()))

	p := &domain.Patient{PatientID: "P1", UserID: "U1", PatientCode: "PAT-0000ABCD", Status: "active"}
	id, ok := s.Sync(context.Background(), PatientRecord(p))
	require.True(t, ok)
	assert.Equal(t, "mirror-1", id)

	rows := store.Rows(TablePatients, "P1")
	require.Len(t, rows, 1)
	assert.Equal(t, "U1", rows[0]["user_canonical_id"])
	assert.Nil(t, rows[0]["assigned_doctor_canonical_id"])
}

func TestSync_FailuresReturnFalse(t *testing.T) {
	cases := []struct {
		name  string
		store *failingStore
		op    string
	}{
		{"select fails", &failingStore{MemoryStore: NewMemoryStore(), failFind: true}, "select"},
		{"insert fails", &failingStore{MemoryStore: NewMemoryStore(), failWrite: true}, "insert"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, m := newTestSyncer(t, tc.store)
			require.True(t, s.CheckReachable(context.Background()))

			id, ok := s.Sync(context.Background(), UserRecord(&domain.User{UserID: "U9"}))
			assert.False(t, ok)
			assert.Empty(t, id)
			assert.Empty(t, tc.store.Rows(TableUsers, "U9"))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.MirrorSyncs.WithLabelValues(TableUsers, tc.op, "failure")))
		})
	}
}

func TestSync_UnavailableSkipsNetwork(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), failPing: true}
	s, m := newTestSyncer(t, store)
	assert.False(t, s.CheckReachable(context.Background()))

	_, ok := s.Sync(context.Background(), UserRecord(&domain.User{UserID: "U1"}))
	assert.False(t, ok)
	assert.Equal(t, 0, store.findCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MirrorSyncs.WithLabelValues(TableUsers, "skip", "unavailable")))

	var nilSyncer *Syncer
	_, ok = nilSyncer.Sync(context.Background(), UserRecord(&domain.User{UserID: "U1"}))
	assert.False(t, ok)

	disabled := NewSyncer(nil, 0, zap.NewNop(), nil)
	assert.False(t, disabled.CheckReachable(context.Background()))
	assert.False(t, disabled.Remove(context.Background(), TableUsers, "U1"))
}

func TestRemove(t *testing.T) {
	store := NewMemoryStore()
	s, _ := newTestSyncer(t, store)
	require.True(t, s.CheckReachable(context.Background()))

	_, ok := s.Sync(context.Background(), UserRecord(&domain.User{UserID: "U1"}))
	require.True(t, ok)
	assert.True(t, s.Remove(context.Background(), TableUsers, "U1"))
	assert.Empty(t, store.Rows(TableUsers, "U1"))
}

func TestRecordPayloadIsTruncated(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	rec := Record{Table: TableUsers, CanonicalID: "U1", Fields: Row{"bio": string(long)}}
	assert.LessOrEqual(t, len(rec.payload()), payloadLogLimit+len("...(truncated)"))
}
