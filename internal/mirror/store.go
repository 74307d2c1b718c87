// Package mirror replicates canonical records to the secondary document store.
//
// Every mirror row carries its own id plus canonical_id, the id of the canonical row it
// copies. The existence check is keyed on canonical_id, so at most one mirror row per
// canonical record is written by sequential syncs.
//
// Concurrent syncs of the same canonical id can both miss the existence check and both
// insert. The outcome is last write wins with possibly one duplicate row; there is no
// cross-request locking.
package mirror

import (
	"context"
	"errors"
)

// Mirror tables.
const (
	TableUsers         = "unified_users"
	TableProfiles      = "unified_profiles"
	TablePatients      = "unified_patients"
	TablePrakriti      = "prakriti_analyses"
	TableDiseases      = "disease_analyses"
	TableConsultations = "consultations"
	TableDietCharts    = "diet_charts"
)

// ColumnCanonicalID is the back-reference column present on every mirror table.
const ColumnCanonicalID = "canonical_id"

var ErrUnavailable = errors.New("mirror store unavailable")

// Row is one mirror row body as sent over the wire.
type Row map[string]any

// Store is the secondary store boundary.
type Store interface {
	// FindByCanonicalID returns the mirror row id for canonicalID, found=false when absent.
	FindByCanonicalID(ctx context.Context, table, canonicalID string) (mirrorID string, found bool, err error)
	Insert(ctx context.Context, table string, row Row) error
	// Update patches every row whose canonical_id matches.
	Update(ctx context.Context, table, canonicalID string, row Row) error
	Delete(ctx context.Context, table, canonicalID string) error
	// Ping performs a cheap read used for the availability check.
	Ping(ctx context.Context) error
}
