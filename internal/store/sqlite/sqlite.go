// Package sqlite is the embedded store driver, built on dbx over the pure-Go modernc SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	_ "modernc.org/sqlite"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS trips (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    trip_details TEXT NOT NULL,
    image_urls   TEXT NOT NULL DEFAULT '[]',
    time_zone    TEXT NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trips_user_created ON trips (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trips_created ON trips (created_at DESC);
CREATE TABLE IF NOT EXISTS users (
    user_id   TEXT PRIMARY KEY,
    email     TEXT NOT NULL,
    name      TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    status    TEXT NOT NULL,
    joined_at INTEGER NOT NULL
);
`

// Open opens (or creates) a SQLite database at path, enables WAL and applies the schema.
// ":memory:" opens a private in-memory database on a single connection.
func Open(ctx context.Context, path string) (*dbx.DB, error) {
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(ON)"
	} else {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", path)
	}

	db, err := dbx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.DB().SetMaxOpenConns(1)
	}
	if _, err := db.NewQuery(schema).WithContext(ctx).Execute(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}

// New wraps an open database.
func New(db *dbx.DB) *Store { return &Store{db: db} }

type Store struct{ db *dbx.DB }

func (s *Store) Trips() store.Trips { return &trips{db: s.db} }
func (s *Store) Users() store.Users { return &users{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.db.DB().PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// --- Trips ---

type tripRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	TripDetails string `db:"trip_details"`
	ImageURLs   string `db:"image_urls"`
	TimeZone    string `db:"time_zone"`
	CreatedAt   int64  `db:"created_at"`
}

func (r *tripRow) record() (*model.TripRecord, error) {
	urls, err := store.DecodeImageURLs(r.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("trip %s image urls: %w", r.ID, err)
	}
	return &model.TripRecord{
		ID:          r.ID,
		TripDetails: r.TripDetails,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
		ImageURLs:   urls,
		UserID:      r.UserID,
		TimeZone:    r.TimeZone,
	}, nil
}

type trips struct{ db *dbx.DB }

func (t *trips) Create(ctx context.Context, in *model.TripRecord) (*model.TripRecord, error) {
	out := *in
	out.ID = uuid.NewString()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = store.Now()
	} else {
		out.CreatedAt = out.CreatedAt.UTC().Truncate(time.Millisecond)
	}
	if out.ImageURLs == nil {
		out.ImageURLs = []string{}
	}
	urls, err := store.EncodeImageURLs(out.ImageURLs)
	if err != nil {
		return nil, err
	}

	_, err = t.db.Insert("trips", dbx.Params{
		"id":           out.ID,
		"user_id":      out.UserID,
		"trip_details": out.TripDetails,
		"image_urls":   urls,
		"time_zone":    out.TimeZone,
		"created_at":   out.CreatedAt.UnixMilli(),
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *trips) Get(ctx context.Context, tripID string) (*model.TripRecord, error) {
	var row tripRow
	err := t.db.Select().From("trips").
		Where(dbx.HashExp{"id": tripID}).
		WithContext(ctx).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.record()
}

func (t *trips) List(ctx context.Context, req model.ListTripsRequest) ([]*model.TripRecord, int, error) {
	limit, offset := model.ClampPage(req.Limit, req.Offset)

	var where dbx.Expression
	if req.UserID != "" {
		where = dbx.HashExp{"user_id": req.UserID}
	}

	var total int
	count := t.db.Select("COUNT(*)").From("trips")
	if where != nil {
		count = count.Where(where)
	}
	if err := count.WithContext(ctx).Row(&total); err != nil {
		return nil, 0, err
	}

	q := t.db.Select().From("trips")
	if where != nil {
		q = q.Where(where)
	}
	var rows []tripRow
	err := q.OrderBy("created_at DESC", "id DESC").
		Limit(int64(limit)).
		Offset(int64(offset)).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*model.TripRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].record()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, nil
}

func (t *trips) Delete(ctx context.Context, tripID string) error {
	res, err := t.db.Delete("trips", dbx.HashExp{"id": tripID}).WithContext(ctx).Execute()
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Users ---

type userRow struct {
	UserID   string `db:"user_id"`
	Email    string `db:"email"`
	Name     string `db:"name"`
	ImageURL string `db:"image_url"`
	Status   string `db:"status"`
	JoinedAt int64  `db:"joined_at"`
}

func (r *userRow) user() *model.User {
	return &model.User{
		UserID:   r.UserID,
		Email:    r.Email,
		Name:     r.Name,
		ImageURL: r.ImageURL,
		Status:   r.Status,
		JoinedAt: time.UnixMilli(r.JoinedAt).UTC(),
	}
}

type users struct{ db *dbx.DB }

func (u *users) Upsert(ctx context.Context, in *model.User) (*model.User, error) {
	var out *model.User
	err := u.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		var row userRow
		err := tx.Select().From("users").Where(dbx.HashExp{"user_id": in.UserID}).WithContext(ctx).One(&row)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			out = store.MergeUser(nil, in)
			_, err = tx.Insert("users", userParams(out)).WithContext(ctx).Execute()
			return err
		case err != nil:
			return err
		}
		out = store.MergeUser(row.user(), in)
		_, err = tx.Update("users", userParams(out), dbx.HashExp{"user_id": in.UserID}).WithContext(ctx).Execute()
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func userParams(m *model.User) dbx.Params {
	return dbx.Params{
		"user_id":   m.UserID,
		"email":     m.Email,
		"name":      m.Name,
		"image_url": m.ImageURL,
		"status":    m.Status,
		"joined_at": m.JoinedAt.UnixMilli(),
	}
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var row userRow
	err := u.db.Select().From("users").Where(dbx.HashExp{"user_id": userID}).WithContext(ctx).One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.user(), nil
}

func (u *users) List(ctx context.Context, req model.ListUsersRequest) ([]*model.User, int, error) {
	limit, offset := model.ClampPage(req.Limit, req.Offset)

	var total int
	if err := u.db.Select("COUNT(*)").From("users").WithContext(ctx).Row(&total); err != nil {
		return nil, 0, err
	}
	var rows []userRow
	err := u.db.Select().From("users").
		OrderBy("joined_at DESC", "user_id").
		Limit(int64(limit)).
		Offset(int64(offset)).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*model.User, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].user())
	}
	return out, total, nil
}
