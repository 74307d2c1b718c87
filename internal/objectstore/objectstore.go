// Package objectstore stores patient attachments in an external bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotConfigured  = errors.New("object storage not configured")
	ErrObjectNotFound = errors.New("object not found")
)

// Entry describes one stored object.
type Entry struct {
	Path      string
	Name      string
	Size      int64
	UpdatedAt time.Time
}

// Store is the attachment backend boundary.
type Store interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (url string, err error)
	Download(ctx context.Context, objectPath string) ([]byte, error)
	Delete(ctx context.Context, objectPath string) (bool, error)
	List(ctx context.Context, prefix string) ([]Entry, error)
	PublicURL(objectPath string) string
}

// AttachmentPath builds {patient_id}/{report_type}/{YYYY}/{MM}/{uuid}{ext}.
func AttachmentPath(patientID, reportType, fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s/%04d/%02d/%s%s",
		patientID, reportType, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

// PatientPrefix is the listing prefix for all of a patient's attachments.
func PatientPrefix(patientID string) string {
	return patientID + "/"
}

// BelongsTo reports whether objectPath sits under the patient's prefix and is free of
// traversal segments.
func BelongsTo(objectPath, patientID string) bool {
	if strings.Contains(objectPath, "..") {
		return false
	}
	return strings.HasPrefix(objectPath, PatientPrefix(patientID))
}
