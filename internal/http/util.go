package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/service"

	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes v as a success envelope or maps err.
func respond[T any](w http.ResponseWriter, logger *zap.Logger, status int, v T, err error) {
	if err != nil {
		writeError(w, logger, err)
		return
	}
	writeJSON(w, status, Ok(v))
}

// writeFile sends an export or attachment as a download.
func writeFile(w http.ResponseWriter, f *service.ExportFile) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

// parseFloatParam reads an optional numeric query parameter. An unparsable value is a
// validation error rather than silently ignored.
func parseFloatParam(r *http.Request, name string, verr *domain.ValidationError) *float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		verr.Add(name, "must be a number")
		return nil
	}
	return &v
}

func pageRequest(r *http.Request) service.PageRequest {
	q := r.URL.Query()
	return service.PageRequest{Page: parseInt(q.Get("page"), 1), Size: parseInt(q.Get("size"), 20)}
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// decodeJSON reads the request body into out and runs its validate tags.
func decodeJSON(r *http.Request, out any) error {
	if err := readBodyJSON(r, maxJSONBody, out); err != nil {
		return domain.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return validateStruct(out)
}
