package httpapi

import (
	"errors"
	"io"
	"net/http"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipart overhead allowed on top of the file itself
const uploadSlack = 1 << 20

// AttachmentHandler patient report uploads.
type AttachmentHandler struct {
	attachmentService AttachmentService
	logger            *zap.Logger
}

func NewAttachmentHandler(attachmentService AttachmentService, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, logger: logger}
}

// Upload multipart form: file, report_type.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxAttachmentBytes+uploadSlack)
	if err := r.ParseMultipartForm(service.MaxAttachmentBytes + uploadSlack); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, domain.NewValidationError("file", "exceeds the 10 MiB limit"))
			return
		}
		writeError(w, h.logger, domain.NewValidationError("file", "multipart form with a file field is required"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, domain.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	// read one byte past the limit so the service can reject oversized files
	data, err := io.ReadAll(io.LimitReader(file, service.MaxAttachmentBytes+1))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	att, err := h.attachmentService.Upload(r.Context(), actorFrom(r), chi.URLParam(r, "id"), service.UploadAttachmentRequest{
		ReportType:  r.FormValue("report_type"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	respond(w, h.logger, http.StatusCreated, att, err)
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.attachmentService.List(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, h.logger, http.StatusOK, list, err)
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	f, err := h.attachmentService.Download(r.Context(), actorFrom(r), chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFile(w, f)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.attachmentService.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "*"))
	respond[any](w, h.logger, http.StatusOK, nil, err)
}
