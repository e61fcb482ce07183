package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
)

// Memory is a mutex-guarded in-process store for service and handler tests.
// Err, when set, is returned by every call.
type Memory struct {
	mu    sync.Mutex
	trips map[string]model.TripRecord
	users map[string]model.User

	Err   error
	Calls int
}

func NewMemory() *Memory {
	return &Memory{trips: map[string]model.TripRecord{}, users: map[string]model.User{}}
}

func (m *Memory) Trips() store.Trips { return memTrips{m} }
func (m *Memory) Users() store.Users { return memUsers{m} }

// TripCount reports how many trips are stored.
func (m *Memory) TripCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trips)
}

func (m *Memory) enter() error {
	m.mu.Lock()
	m.Calls++
	return m.Err
}

type memTrips struct{ m *Memory }

func (t memTrips) Create(_ context.Context, in *model.TripRecord) (*model.TripRecord, error) {
	err := t.m.enter()
	defer t.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := *in
	out.ID = uuid.NewString()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = store.Now()
	} else {
		out.CreatedAt = out.CreatedAt.UTC().Truncate(time.Millisecond)
	}
	out.ImageURLs = append([]string{}, in.ImageURLs...)
	t.m.trips[out.ID] = out
	cp := out
	return &cp, nil
}

func (t memTrips) Get(_ context.Context, id string) (*model.TripRecord, error) {
	err := t.m.enter()
	defer t.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	rec, ok := t.m.trips[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	rec.ImageURLs = append([]string{}, rec.ImageURLs...)
	return &rec, nil
}

func (t memTrips) List(_ context.Context, req model.ListTripsRequest) ([]*model.TripRecord, int, error) {
	err := t.m.enter()
	defer t.m.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	limit, offset := model.ClampPage(req.Limit, req.Offset)
	var all []model.TripRecord
	for _, r := range t.m.trips {
		if req.UserID == "" || r.UserID == req.UserID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	out := []*model.TripRecord{}
	for i := offset; i < len(all) && len(out) < limit; i++ {
		r := all[i]
		out = append(out, &r)
	}
	return out, len(all), nil
}

func (t memTrips) Delete(_ context.Context, id string) error {
	err := t.m.enter()
	defer t.m.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := t.m.trips[id]; !ok {
		return model.ErrNotFound
	}
	delete(t.m.trips, id)
	return nil
}

type memUsers struct{ m *Memory }

func (u memUsers) Upsert(_ context.Context, in *model.User) (*model.User, error) {
	err := u.m.enter()
	defer u.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var existing *model.User
	if cur, ok := u.m.users[in.UserID]; ok {
		existing = &cur
	}
	out := store.MergeUser(existing, in)
	u.m.users[out.UserID] = *out
	return out, nil
}

func (u memUsers) Get(_ context.Context, id string) (*model.User, error) {
	err := u.m.enter()
	defer u.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	usr, ok := u.m.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &usr, nil
}

func (u memUsers) List(_ context.Context, req model.ListUsersRequest) ([]*model.User, int, error) {
	err := u.m.enter()
	defer u.m.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	limit, offset := model.ClampPage(req.Limit, req.Offset)
	var all []model.User
	for _, usr := range u.m.users {
		all = append(all, usr)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].JoinedAt.Equal(all[j].JoinedAt) {
			return all[i].JoinedAt.After(all[j].JoinedAt)
		}
		return all[i].UserID < all[j].UserID
	})
	out := []*model.User{}
	for i := offset; i < len(all) && len(out) < limit; i++ {
		usr := all[i]
		out = append(out, &usr)
	}
	return out, len(all), nil
}
