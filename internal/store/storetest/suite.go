// Package storetest holds the conformance suite every store driver must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide an isolated store and return it from makeStore.
// Identifiers are unique per run so a shared database is acceptable.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("Trips", func(t *testing.T) { runTrips(t, makeStore(t)) })
	t.Run("Users", func(t *testing.T) { runUsers(t, makeStore(t)) })
}

func runTrips(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := "u-" + uuid.New().String()

	in := &model.TripRecord{
		ID:          "client-supplied",
		TripDetails: `{"name":"Kyoto Calm","duration":3}`,
		ImageURLs:   []string{"https://img/1", "https://img/2"},
		UserID:      userID,
		TimeZone:    "Asia/Tokyo",
	}
	created, err := s.Trips().Create(ctx, in)
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if created.ID == "" || created.ID == "client-supplied" {
		t.Fatalf("CreateTrip: store must generate the id, got %q", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("CreateTrip: createdAt not set")
	}

	got, err := s.Trips().Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.TripDetails != in.TripDetails || got.UserID != userID || got.TimeZone != "Asia/Tokyo" {
		t.Fatalf("GetTrip: unexpected record %+v", got)
	}
	if len(got.ImageURLs) != 2 || got.ImageURLs[1] != "https://img/2" {
		t.Fatalf("GetTrip: image urls %v", got.ImageURLs)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("GetTrip: createdAt %v != %v", got.CreatedAt, created.CreatedAt)
	}

	// no images must come back as an empty list, never nil
	bare, err := s.Trips().Create(ctx, &model.TripRecord{TripDetails: `{}`, UserID: userID, CreatedAt: created.CreatedAt.Add(time.Second)})
	if err != nil {
		t.Fatalf("CreateTrip bare: %v", err)
	}
	if got, err := s.Trips().Get(ctx, bare.ID); err != nil || got.ImageURLs == nil || len(got.ImageURLs) != 0 {
		t.Fatalf("GetTrip bare: got=%+v err=%v", got, err)
	}

	third, err := s.Trips().Create(ctx, &model.TripRecord{TripDetails: `{}`, UserID: userID, CreatedAt: created.CreatedAt.Add(2 * time.Second)})
	if err != nil {
		t.Fatalf("CreateTrip third: %v", err)
	}

	page, total, err := s.Trips().List(ctx, model.ListTripsRequest{UserID: userID, Limit: 2})
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("ListTrips: total=%d n=%d", total, len(page))
	}
	if page[0].ID != third.ID || page[1].ID != bare.ID {
		t.Fatalf("ListTrips: not newest first: %s, %s", page[0].ID, page[1].ID)
	}
	rest, _, err := s.Trips().List(ctx, model.ListTripsRequest{UserID: userID, Limit: 2, Offset: 2})
	if err != nil || len(rest) != 1 || rest[0].ID != created.ID {
		t.Fatalf("ListTrips offset: n=%d err=%v", len(rest), err)
	}

	if _, total, err := s.Trips().List(ctx, model.ListTripsRequest{Limit: 1}); err != nil || total < 3 {
		t.Fatalf("ListTrips all: total=%d err=%v", total, err)
	}

	if err := s.Trips().Delete(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	if _, err := s.Trips().Get(ctx, created.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetTrip after delete: want ErrNotFound, got %v", err)
	}
	if err := s.Trips().Delete(ctx, created.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteTrip twice: want ErrNotFound, got %v", err)
	}
	if _, err := s.Trips().Get(ctx, "does-not-exist"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetTrip unknown: want ErrNotFound, got %v", err)
	}
}

func runUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := "u-" + uuid.New().String()

	u, err := s.Users().Upsert(ctx, &model.User{UserID: userID, Email: userID + "@example.test", Name: "Ada"})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if u.Status != model.UserStatusUser || u.JoinedAt.IsZero() {
		t.Fatalf("UpsertUser insert defaults: %+v", u)
	}

	promoted, err := s.Users().Upsert(ctx, &model.User{UserID: userID, Email: userID + "@example.test", Name: "Ada L", Status: model.UserStatusAdmin})
	if err != nil {
		t.Fatalf("UpsertUser promote: %v", err)
	}
	if promoted.Status != model.UserStatusAdmin || !promoted.JoinedAt.Equal(u.JoinedAt) {
		t.Fatalf("UpsertUser promote: %+v", promoted)
	}

	// a later sign-in without status keeps the role
	again, err := s.Users().Upsert(ctx, &model.User{UserID: userID, Email: "new-" + userID + "@example.test", Name: "Ada", ImageURL: "https://img/ada"})
	if err != nil {
		t.Fatalf("UpsertUser refresh: %v", err)
	}
	if again.Status != model.UserStatusAdmin {
		t.Fatalf("UpsertUser refresh lost status: %+v", again)
	}

	got, err := s.Users().Get(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "new-"+userID+"@example.test" || got.ImageURL != "https://img/ada" || got.Status != model.UserStatusAdmin {
		t.Fatalf("GetUser: %+v", got)
	}
	if !got.JoinedAt.Equal(u.JoinedAt) {
		t.Fatalf("GetUser: joinedAt changed %v -> %v", u.JoinedAt, got.JoinedAt)
	}

	if _, err := s.Users().Get(ctx, "u-missing-"+uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser unknown: want ErrNotFound, got %v", err)
	}

	other := "u-" + uuid.New().String()
	if _, err := s.Users().Upsert(ctx, &model.User{UserID: other, Email: other + "@example.test"}); err != nil {
		t.Fatalf("UpsertUser other: %v", err)
	}
	lst, total, err := s.Users().List(ctx, model.ListUsersRequest{Limit: 100})
	if err != nil || total < 2 || len(lst) < 2 {
		t.Fatalf("ListUsers: n=%d total=%d err=%v", len(lst), total, err)
	}
	one, _, err := s.Users().List(ctx, model.ListUsersRequest{Limit: 1})
	if err != nil || len(one) != 1 {
		t.Fatalf("ListUsers limit: n=%d err=%v", len(one), err)
	}
}
