package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"aahaara-data/internal/domain"

	"github.com/lib/pq"
)

// ErrConcurrentUpdate is returned by compare-and-set updates whose precondition no
// longer holds.
var ErrConcurrentUpdate = errors.New("row changed concurrently")

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// notFound converts sql.ErrNoRows into *domain.NotFoundError and wraps anything else.
func notFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

// uniqueConstraintFields maps unique constraint names to the API field they guard.
var uniqueConstraintFields = map[string]string{
	"users_username_key":                 "username",
	"users_email_key":                    "email",
	"doctor_profiles_license_number_key": "license_number",
	"food_items_name_key":                "name",
	"patients_patient_code_key":          "patient_code",
}

// writeErr turns unique violations into *domain.ConflictError and foreign key
// violations into *domain.ValidationError.
func writeErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			field, ok := uniqueConstraintFields[pqErr.Constraint]
			if !ok {
				field = pqErr.Constraint
			}
			return &domain.ConflictError{Field: field}
		case "23503":
			return domain.NewValidationError(fkField(pqErr.Constraint), "references a missing record")
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// fkField extracts the column from constraint names like "patients_assigned_doctor_id_fkey".
func fkField(constraint string) string {
	c := strings.TrimSuffix(constraint, "_fkey")
	for _, table := range []string{"patients_", "consultations_", "diet_charts_", "prakriti_analyses_", "disease_analyses_", "food_items_", "diet_recommendations_"} {
		if strings.HasPrefix(c, table) {
			return strings.TrimPrefix(c, table)
		}
	}
	return c
}

func nullable(s sql.NullString) any {
	if s.Valid {
		return s.String
	}
	return nil
}

func nullableTime(t sql.NullTime) any {
	if t.Valid {
		return t.Time
	}
	return nil
}

func nullableFloat(f sql.NullFloat64) any {
	if f.Valid {
		return f.Float64
	}
	return nil
}

// textArray keeps NOT NULL array columns from receiving NULL.
func textArray(a pq.StringArray) pq.StringArray {
	if a == nil {
		return pq.StringArray{}
	}
	return a
}

func toJSONB(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "{}", nil
	}
	return string(b), nil
}

func fromJSONB(raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
	// MaxPage keeps (page-1)*size far from int overflow.
	MaxPage = 100000
)

// NormalizePage clamps page into [1, MaxPage] and size into [1, MaxPageSize],
// defaulting a non-positive size to DefaultPageSize.
func NormalizePage(page, size int) (int, int) {
	switch {
	case page <= 0:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return page, size
}

// pageBounds normalises page/size into LIMIT/OFFSET.
func pageBounds(page, size int) (limit, offset int) {
	page, size = NormalizePage(page, size)
	return size, (page - 1) * size
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern escapes LIKE wildcards in s and wraps it for a substring match.
// Use with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// whereBuilder accumulates positional predicates.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

func (w *whereBuilder) raw(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *whereBuilder) next() int {
	return len(w.args) + 1
}
