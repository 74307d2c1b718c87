package httpapi

import (
	"net/http"

	"aahaara-data/internal/service"

	"go.uber.org/zap"
)

// ProfileHandler the caller's own account and role profile.
type ProfileHandler struct {
	profileService ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	resp, err := h.profileService.GetProfile(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp, err := h.profileService.UpdateProfile(r.Context(), actorFrom(r), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
