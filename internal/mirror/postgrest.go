package mirror

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aahaara-data/internal/logger"

	"github.com/go-resty/resty/v2"
)

// PostgRESTStore talks to a Supabase PostgREST endpoint.
type PostgRESTStore struct {
	httpClient *resty.Client
}

var _ Store = (*PostgRESTStore)(nil)

// NewPostgRESTStore builds a client for baseURL (the project URL, without /rest/v1).
// Requests are not retried: a sync does at most one existence check and one write.
func NewPostgRESTStore(baseURL, apiKey string, timeout time.Duration) *PostgRESTStore {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetTimeout(timeout).
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PostgRESTStore{httpClient: client}
}

type idRow struct {
	ID string `json:"id"`
}

func (s *PostgRESTStore) FindByCanonicalID(ctx context.Context, table, canonicalID string) (string, bool, error) {
	var rows []idRow
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam(ColumnCanonicalID, "eq."+canonicalID).
		SetQueryParam("select", "id").
		SetQueryParam("limit", "1").
		SetResult(&rows).
		Get("/" + table)
	if err := checkResponse("select", table, resp, err); err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].ID, true, nil
}

func (s *PostgRESTStore) Insert(ctx context.Context, table string, row Row) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/" + table)
	return checkResponse("insert", table, resp, err)
}

func (s *PostgRESTStore) Update(ctx context.Context, table, canonicalID string, row Row) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetQueryParam(ColumnCanonicalID, "eq."+canonicalID).
		SetBody(row).
		Patch("/" + table)
	return checkResponse("update", table, resp, err)
}

func (s *PostgRESTStore) Delete(ctx context.Context, table, canonicalID string) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam(ColumnCanonicalID, "eq."+canonicalID).
		Delete("/" + table)
	return checkResponse("delete", table, resp, err)
}

func (s *PostgRESTStore) Ping(ctx context.Context) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("select", "id").
		SetQueryParam("limit", "1").
		Get("/" + TableUsers)
	return checkResponse("ping", TableUsers, resp, err)
}

func checkResponse(op, table string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("mirror %s %s: %w", op, table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("mirror %s %s: status %d: %s", op, table, resp.StatusCode(), logger.Truncate(resp.String(), 200))
	}
	return nil
}
