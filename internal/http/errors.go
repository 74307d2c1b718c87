package httpapi

import (
	"errors"
	"net/http"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/objectstore"

	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP statuses. Anything unrecognized is logged
// and reported as a 500 without its message.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validation *domain.ValidationError
		transition *domain.InvalidTransitionError
		unauth     *domain.UnauthorizedError
		forbidden  *domain.ForbiddenError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, failWith(ResultError, validation.Error(), validation.Fields))
	case errors.As(err, &transition):
		writeJSON(w, http.StatusBadRequest, Fail(transition.Error()))
	case errors.As(err, &unauth):
		writeJSON(w, http.StatusUnauthorized, Fail(unauth.Error()))
	case errors.As(err, &forbidden):
		writeJSON(w, http.StatusForbidden, Fail(forbidden.Error()))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, Fail(notFound.Error()))
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, Fail(conflict.Error()))
	case errors.Is(err, objectstore.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, Fail(err.Error()))
	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal server error"))
	}
}

// tokenRejected is the 401 the client treats as "log in again".
func tokenRejected(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, failWith[any](ResultTokenRejected, message, nil))
}
