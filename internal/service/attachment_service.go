package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/objectstore"
	"aahaara-data/internal/repository"

	"go.uber.org/zap"
)

// MaxAttachmentBytes bounds a single upload.
const MaxAttachmentBytes = 10 << 20

// AttachmentService stores patient reports in object storage. Doctors upload for any
// patient; patients upload and read their own.
type AttachmentService struct {
	store    objectstore.Store
	patients repository.PatientsRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttachmentService accepts a nil store; every call then fails with
// objectstore.ErrNotConfigured.
func NewAttachmentService(store objectstore.Store, patients repository.PatientsRepository, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{store: store, patients: patients, logger: logger, now: time.Now}
}

type UploadAttachmentRequest struct {
	ReportType  string
	FileName    string
	ContentType string
	Data        []byte
}

func (s *AttachmentService) Upload(ctx context.Context, actor Actor, patientID string, req UploadAttachmentRequest) (*domain.Attachment, error) {
	if s.store == nil {
		return nil, objectstore.ErrNotConfigured
	}
	if _, err := authorizePatient(ctx, s.patients, actor, patientID); err != nil {
		return nil, err
	}
	verr := &domain.ValidationError{}
	if !contains(domain.ReportTypes, req.ReportType) {
		verr.Add("report_type", "must be one of lab_report, prescription, imaging, discharge_summary, other")
	}
	if len(req.Data) == 0 {
		verr.Add("file", "is empty")
	}
	if len(req.Data) > MaxAttachmentBytes {
		verr.Add("file", fmt.Sprintf("exceeds %d bytes", MaxAttachmentBytes))
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(req.Data)
	}

	objectPath := objectstore.AttachmentPath(patientID, req.ReportType, req.FileName, s.now())
	url, err := s.store.Upload(ctx, objectPath, contentType, req.Data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Attachment uploaded",
		zap.String("patient_id", patientID),
		zap.String("path", objectPath),
		zap.Int("size", len(req.Data)),
	)
	return &domain.Attachment{
		Path:        objectPath,
		Name:        path.Base(objectPath),
		URL:         url,
		Size:        int64(len(req.Data)),
		ContentType: contentType,
		UpdatedAt:   s.now(),
	}, nil
}

func (s *AttachmentService) List(ctx context.Context, actor Actor, patientID string) ([]*domain.Attachment, error) {
	if s.store == nil {
		return nil, objectstore.ErrNotConfigured
	}
	if _, err := authorizePatient(ctx, s.patients, actor, patientID); err != nil {
		return nil, err
	}
	entries, err := s.store.List(ctx, objectstore.PatientPrefix(patientID))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Attachment, 0, len(entries))
	for _, e := range entries {
		out = append(out, &domain.Attachment{
			Path:      e.Path,
			Name:      e.Name,
			URL:       s.store.PublicURL(e.Path),
			Size:      e.Size,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return out, nil
}

// authorizePath resolves the owning patient from the first path segment.
func (s *AttachmentService) authorizePath(ctx context.Context, actor Actor, objectPath string) error {
	if s.store == nil {
		return objectstore.ErrNotConfigured
	}
	patientID, _, _ := strings.Cut(objectPath, "/")
	if patientID == "" || !objectstore.BelongsTo(objectPath, patientID) {
		return domain.NewValidationError("path", "invalid attachment path")
	}
	_, err := authorizePatient(ctx, s.patients, actor, patientID)
	return err
}

func (s *AttachmentService) Download(ctx context.Context, actor Actor, objectPath string) (*ExportFile, error) {
	if err := s.authorizePath(ctx, actor, objectPath); err != nil {
		return nil, err
	}
	data, err := s.store.Download(ctx, objectPath)
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		return nil, &domain.NotFoundError{Entity: "attachment", ID: objectPath}
	}
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: path.Base(objectPath), ContentType: http.DetectContentType(data), Data: data}, nil
}

func (s *AttachmentService) Delete(ctx context.Context, actor Actor, objectPath string) error {
	if err := s.authorizePath(ctx, actor, objectPath); err != nil {
		return err
	}
	deleted, err := s.store.Delete(ctx, objectPath)
	if err != nil {
		return err
	}
	if !deleted {
		return &domain.NotFoundError{Entity: "attachment", ID: objectPath}
	}
	s.logger.Info("Attachment deleted", zap.String("path", objectPath), zap.String("user_id", actor.UserID))
	return nil
}
