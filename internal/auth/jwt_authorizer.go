package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// Claims carried by tokens minted by the identity provider.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthorizer verifies HS256 tokens; sub is the user id.
type JWTAuthorizer struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTAuthorizer(secret string) *JWTAuthorizer {
	return &JWTAuthorizer{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (a *JWTAuthorizer) Authenticate(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	var claims Claims
	_, err := a.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	role := claims.Role
	if role != model.UserStatusAdmin {
		role = model.UserStatusUser
	}
	return &Identity{UserID: claims.Subject, Role: role}, nil
}

// Sign mints a token for id; used by tripctl and tests.
func (a *JWTAuthorizer) Sign(id Identity, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = id.UserID
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: id.Role, RegisteredClaims: claims}).SignedString(a.secret)
}
