package domain

import "time"

var ReportTypes = []string{"lab_report", "prescription", "imaging", "discharge_summary", "other"}

// Attachment is an object stored for a patient. It lives only in object storage;
// the path encodes patient, report type and upload month.
type Attachment struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
