package auth

import (
	"context"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// Identity is the verified caller behind a bearer token.
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role"` // model.UserStatusUser or model.UserStatusAdmin
}

func (i *Identity) IsAdmin() bool { return i != nil && i.Role == model.UserStatusAdmin }

// Authorizer turns a bearer token into an Identity.
// A nil Identity with a nil error means authentication is disabled and the
// request is trusted as-is.
type Authorizer interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// NoopAuthorizer trusts every request; used when AUTH_MODE=none.
type NoopAuthorizer struct{}

func NewNoopAuthorizer() *NoopAuthorizer { return &NoopAuthorizer{} }

func (NoopAuthorizer) Authenticate(context.Context, string) (*Identity, error) { return nil, nil }

// CheckOwner allows the owner, admins, and everyone when auth is disabled.
func CheckOwner(id *Identity, userID string) error {
	if id == nil || id.IsAdmin() || id.UserID == userID {
		return nil
	}
	return ErrForbidden
}

// RequireAdmin allows admins, and everyone when auth is disabled.
func RequireAdmin(id *Identity) error {
	if id == nil || id.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

type ctxKey struct{}

// WithIdentity stores the verified identity on the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity set by the auth middleware; nil when auth is disabled.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
