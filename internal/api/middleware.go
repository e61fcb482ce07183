package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/api/respond"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			ev := log.Info()
			if rec.status >= 500 {
				ev = log.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// Authenticate resolves the bearer token through the authorizer and stores the
// identity on the request context. A disabled authorizer lets every request
// through without looking at the Authorization header.
func Authenticate(authz auth.Authorizer, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		switch authz.(type) {
		case auth.NoopAuthorizer, *auth.NoopAuthorizer:
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearer(r)
			if err == nil {
				var id *auth.Identity
				id, err = authz.Authenticate(r.Context(), token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
					return
				}
			}
			if !errors.Is(err, auth.ErrUnauthenticated) {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("token rejected")
			}
			respond.WriteError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
		})
	}
}

// AdminOnly rejects non-admin identities with 403.
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(auth.FromContext(r.Context())); err != nil {
			respond.WriteError(w, http.StatusForbidden, err.Error())
			return
		}
		next(w, r)
	}
}
