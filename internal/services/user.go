package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/validate"
)

// UserService manages dashboard accounts.
type UserService struct {
	users store.Users
	log   zerolog.Logger
}

func NewUserService(s store.Store, log zerolog.Logger) *UserService {
	return &UserService{users: s.Users(), log: log}
}

// Upsert registers or refreshes an account. Status may be empty (keep), user or admin.
func (s *UserService) Upsert(ctx context.Context, u model.User) (*model.User, error) {
	u.UserID = strings.TrimSpace(u.UserID)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = clean(u.Name)
	u.ImageURL = strings.TrimSpace(u.ImageURL)
	u.Status = strings.ToLower(strings.TrimSpace(u.Status))

	if err := validate.UpsertUser(u.UserID, u.Email, u.Name, u.ImageURL, u.Status,
		model.UserStatusUser, model.UserStatusAdmin); err != nil {
		return nil, model.Fail(model.FailureValidation, err)
	}

	out, err := s.users.Upsert(ctx, &u)
	if err != nil {
		s.log.Error().Err(err).Str("userId", u.UserID).Msg("user upsert failed")
		return nil, err
	}
	s.log.Info().Str("userId", out.UserID).Str("status", out.Status).Msg("user upserted")
	return out, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.ErrNotFound
	}
	return s.users.Get(ctx, userID)
}

func (s *UserService) List(ctx context.Context, req model.ListUsersRequest) ([]*model.User, int, error) {
	req.Limit, req.Offset = model.ClampPage(req.Limit, req.Offset)
	return s.users.List(ctx, req)
}
