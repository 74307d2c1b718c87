package mirror

import (
	"context"
	"sync"
)

// MemoryStore keeps mirror rows in process. Used for local runs without a Supabase
// project (MIRROR_BACKEND=memory) and by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string][]Row{}}
}

func (m *MemoryStore) FindByCanonicalID(_ context.Context, table, canonicalID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.tables[table] {
		if r[ColumnCanonicalID] == canonicalID {
			id, _ := r["id"].(string)
			return id, true, nil
		}
	}
	return "", false, nil
}

func (m *MemoryStore) Insert(_ context.Context, table string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], copyRow(row))
	return nil
}

func (m *MemoryStore) Update(_ context.Context, table, canonicalID string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.tables[table] {
		if r[ColumnCanonicalID] != canonicalID {
			continue
		}
		for k, v := range row {
			r[k] = v
		}
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, table, canonicalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tables[table][:0]
	for _, r := range m.tables[table] {
		if r[ColumnCanonicalID] != canonicalID {
			kept = append(kept, r)
		}
	}
	m.tables[table] = kept
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Rows returns copies of every row in table whose canonical_id matches.
func (m *MemoryStore) Rows(table, canonicalID string) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Row
	for _, r := range m.tables[table] {
		if r[ColumnCanonicalID] == canonicalID {
			out = append(out, copyRow(r))
		}
	}
	return out
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
