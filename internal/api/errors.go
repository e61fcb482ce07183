package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/api/respond"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/services"
)

// writeServiceError maps service errors to status codes. Pipeline failures
// expose their message; other internal errors are replaced by fallback.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		respond.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		respond.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrSearchDisabled):
		respond.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		msg := fallback
		if model.KindOf(err) != model.FailureNone && err.Error() != "" {
			msg = err.Error()
		}
		log.Error().Err(err).Msg(fallback)
		respond.WriteInternalError(w, msg)
	}
}
