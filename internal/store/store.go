package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (mongo, sqlstore, sqlite, spanner).
type Store interface {
	Trips() Trips
	Users() Users
}

// Trips persists generated trips. Records are immutable once created.
type Trips interface {
	// Create assigns the record id (and createdAt when zero) and returns the stored copy.
	// Any id set by the caller is ignored.
	Create(ctx context.Context, t *model.TripRecord) (*model.TripRecord, error)
	Get(ctx context.Context, tripID string) (*model.TripRecord, error)
	// List returns one page newest first, plus the total matching the filter.
	List(ctx context.Context, req model.ListTripsRequest) ([]*model.TripRecord, int, error)
	Delete(ctx context.Context, tripID string) error
}

type Users interface {
	// Upsert inserts a new user or refreshes email, name and image of an existing one.
	// An empty Status keeps the stored status ("user" for new accounts); JoinedAt is
	// set once on insert.
	Upsert(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context, req model.ListUsersRequest) ([]*model.User, int, error)
}

// Now returns the timestamp drivers stamp on new rows. Millisecond precision
// keeps values identical across every backend's round trip.
func Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// EncodeImageURLs serializes image URLs for column-oriented drivers.
func EncodeImageURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeImageURLs is the inverse of EncodeImageURLs; empty input yields an empty slice.
func DecodeImageURLs(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MergeUser applies Upsert semantics to the existing row (nil when absent).
func MergeUser(existing, in *model.User) *model.User {
	out := *in
	if existing == nil {
		if out.Status == "" {
			out.Status = model.UserStatusUser
		}
		if out.JoinedAt.IsZero() {
			out.JoinedAt = Now()
		} else {
			out.JoinedAt = out.JoinedAt.UTC().Truncate(time.Millisecond)
		}
		return &out
	}
	if out.Status == "" {
		out.Status = existing.Status
	}
	out.JoinedAt = existing.JoinedAt
	return &out
}
