package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// StaticAuthorizer resolves a fixed token table, for local development and tests.
type StaticAuthorizer struct {
	tokens map[string]Identity
}

// NewStaticAuthorizer parses "token=userId:role,token2=userId2" (role defaults to user).
func NewStaticAuthorizer(table string) (*StaticAuthorizer, error) {
	tokens := map[string]Identity{}
	for _, entry := range strings.Split(table, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		tok, who, ok := strings.Cut(entry, "=")
		if !ok || tok == "" || who == "" {
			return nil, fmt.Errorf("invalid static token entry %q", entry)
		}
		userID, role, _ := strings.Cut(who, ":")
		if role == "" {
			role = model.UserStatusUser
		}
		if role != model.UserStatusUser && role != model.UserStatusAdmin {
			return nil, fmt.Errorf("invalid role %q for static token", role)
		}
		tokens[tok] = Identity{UserID: userID, Role: role}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no static tokens configured")
	}
	return &StaticAuthorizer{tokens: tokens}, nil
}

func (s *StaticAuthorizer) Authenticate(_ context.Context, token string) (*Identity, error) {
	id, ok := s.tokens[token]
	if !ok || token == "" {
		return nil, ErrUnauthenticated
	}
	return &id, nil
}
