package auth

import (
	"net/http"
	"strings"
)

// ExtractBearer extracts the token from the Authorization header.
// Returns an empty token when the header is absent.
func ExtractBearer(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}

	// Expect "Bearer <token>" format
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrUnauthenticated
	}
	return strings.TrimSpace(token), nil
}
