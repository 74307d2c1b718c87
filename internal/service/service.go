package service

import (
	"context"
	"database/sql"
	"time"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/repository"
)

// Actor is the authenticated caller as resolved from the bearer token.
type Actor struct {
	UserID string
	Role   domain.Role
	// TokenID and ExpiresAt identify the presented token for logout.
	TokenID   string
	ExpiresAt time.Time
}

func (a Actor) IsDoctor() bool { return a.Role == domain.RoleDoctor }

func requireDoctor(a Actor, action string) error {
	if !a.IsDoctor() {
		return &domain.ForbiddenError{Reason: "only doctors can " + action}
	}
	return nil
}

// syncMirror pushes one committed canonical record to the mirror and returns the
// mirror id for the response, nil when the sync did not happen.
func syncMirror(ctx context.Context, s *mirror.Syncer, rec mirror.Record) *string {
	id, ok := s.Sync(ctx, rec)
	if !ok {
		return nil
	}
	return &id
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func nullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

const dateLayout = "2006-01-02"

// nullDate parses an optional YYYY-MM-DD value.
func nullDate(field string, p *string) (sql.NullTime, error) {
	if p == nil || *p == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(dateLayout, *p)
	if err != nil {
		return sql.NullTime{}, domain.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func datePtr(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(dateLayout)
	return &s
}

// PageRequest is shared by list endpoints.
type PageRequest struct {
	Page int
	Size int
}

// normalized is what the repository will actually serve, so responses echo it.
func (p PageRequest) normalized() (int, int) {
	return repository.NormalizePage(p.Page, p.Size)
}
