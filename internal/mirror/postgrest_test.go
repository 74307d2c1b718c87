package mirror

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"aahaara-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePostgREST serves a single table the way PostgREST filters on canonical_id=eq.X.
type fakePostgREST struct {
	mu   sync.Mutex
	rows []map[string]any
	seen []string
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, r.Method+" "+r.URL.Path)

	if r.Header.Get("apikey") != "test-key" || r.Header.Get("Authorization") != "Bearer test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	filter := r.URL.Query().Get(ColumnCanonicalID)
	match := func(row map[string]any) bool {
		return filter == "" || "eq."+row[ColumnCanonicalID].(string) == filter
	}

	switch r.Method {
	case http.MethodGet:
		out := []map[string]any{}
		for _, row := range f.rows {
			if match(row) {
				out = append(out, map[string]any{"id": row["id"]})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var row map[string]any
		if err := json.Unmarshal(body, &row); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, row)
		w.WriteHeader(http.StatusCreated)
	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		var patch map[string]any
		_ = json.Unmarshal(body, &patch)
		for _, row := range f.rows {
			if match(row) {
				for k, v := range patch {
					row[k] = v
				}
			}
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		kept := f.rows[:0]
		for _, row := range f.rows {
			if !match(row) {
				kept = append(kept, row)
			}
		}
		f.rows = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestPostgRESTStore_SyncRoundTrip(t *testing.T) {
	fake := &fakePostgREST{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store := NewPostgRESTStore(srv.URL+"/", "test-key", 2*time.Second)
	s := NewSyncer(store, 2*time.Second, zap.NewNop(), nil)
	require.True(t, s.CheckReachable(context.Background()))

	a := &domain.PrakritiAnalysis{AnalysisID: "A1", PatientID: "P1", PrimaryDosha: "vata", VataScore: 60, Status: "draft"}
	id1, ok := s.Sync(context.Background(), PrakritiRecord(a))
	require.True(t, ok)

	a.Status = "completed"
	id2, ok := s.Sync(context.Background(), PrakritiRecord(a))
	require.True(t, ok)
	assert.Equal(t, id1, id2)

	require.Len(t, fake.rows, 1)
	assert.Equal(t, "completed", fake.rows[0]["status"])
	assert.Equal(t, "P1", fake.rows[0]["patient_canonical_id"])
	assert.Equal(t, "A1", fake.rows[0][ColumnCanonicalID])

	assert.Contains(t, fake.seen, "GET /rest/v1/"+TableUsers)
	assert.Contains(t, fake.seen, "POST /rest/v1/"+TablePrakriti)
	assert.Contains(t, fake.seen, "PATCH /rest/v1/"+TablePrakriti)

	assert.True(t, s.Remove(context.Background(), TablePrakriti, "A1"))
	assert.Empty(t, fake.rows)
}

func TestPostgRESTStore_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	store := NewPostgRESTStore(srv.URL, "test-key", time.Second)
	_, _, err := store.FindByCanonicalID(context.Background(), TableUsers, "U1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	assert.Error(t, store.Ping(context.Background()))
}

func TestPostgRESTStore_TimeoutIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Query().Get("limit") == "1" && r.URL.Query().Get(ColumnCanonicalID) == "" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := NewPostgRESTStore(srv.URL, "test-key", 5*time.Second)
	s := NewSyncer(store, 100*time.Millisecond, zap.NewNop(), nil)
	require.True(t, s.CheckReachable(context.Background()))

	_, ok := s.Sync(context.Background(), UserRecord(&domain.User{UserID: "U1"}))
	assert.False(t, ok)
}
