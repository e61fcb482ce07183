// Package sqlstore is the relational store driver for PostgreSQL (pgx) and MySQL,
// sharing one set of queries through sqlx placeholder rebinding.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
)

// Dialect names accepted by Open.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
)

var schemas = map[string][]string{
	Postgres: {
		`CREATE TABLE IF NOT EXISTS trips (
            id           VARCHAR(36) PRIMARY KEY,
            user_id      VARCHAR(255) NOT NULL,
            trip_details TEXT NOT NULL,
            image_urls   TEXT NOT NULL,
            time_zone    VARCHAR(64) NOT NULL DEFAULT '',
            created_at   TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_trips_user_created ON trips (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS users (
            user_id   VARCHAR(255) PRIMARY KEY,
            email     VARCHAR(320) NOT NULL,
            name      VARCHAR(255) NOT NULL DEFAULT '',
            image_url TEXT NOT NULL,
            status    VARCHAR(16) NOT NULL,
            joined_at TIMESTAMPTZ NOT NULL
        )`,
	},
	MySQL: {
		`CREATE TABLE IF NOT EXISTS trips (
            id           VARCHAR(36) PRIMARY KEY,
            user_id      VARCHAR(255) NOT NULL,
            trip_details LONGTEXT NOT NULL,
            image_urls   TEXT NOT NULL,
            time_zone    VARCHAR(64) NOT NULL DEFAULT '',
            created_at   DATETIME(3) NOT NULL,
            INDEX idx_trips_user_created (user_id, created_at)
        )`,
		`CREATE TABLE IF NOT EXISTS users (
            user_id   VARCHAR(255) PRIMARY KEY,
            email     VARCHAR(320) NOT NULL,
            name      VARCHAR(255) NOT NULL DEFAULT '',
            image_url TEXT NOT NULL,
            status    VARCHAR(16) NOT NULL,
            joined_at DATETIME(3) NOT NULL
        )`,
	},
}

// Open connects with the dialect's driver, verifies connectivity and applies the schema.
// MySQL DSNs are normalized to parse times as UTC.
func Open(ctx context.Context, dialect, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s DSN is empty", dialect)
	}
	var driver string
	switch dialect {
	case Postgres:
		driver = "pgx"
	case MySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		dsn = cfg.FormatDSN()
		driver = "mysql"
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", dialect)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	for _, stmt := range schemas[dialect] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s schema: %w", dialect, err)
		}
	}
	return db, nil
}

// NewWithDB constructs a store on an open connection.
func NewWithDB(db *sqlx.DB) *Store { return &Store{db: db} }

type Store struct{ db *sqlx.DB }

func (s *Store) Trips() store.Trips { return &trips{db: s.db} }
func (s *Store) Users() store.Users { return &users{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// --- Trips ---

type tripRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	TripDetails string    `db:"trip_details"`
	ImageURLs   string    `db:"image_urls"`
	TimeZone    string    `db:"time_zone"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *tripRow) record() (*model.TripRecord, error) {
	urls, err := store.DecodeImageURLs(r.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("trip %s image urls: %w", r.ID, err)
	}
	return &model.TripRecord{
		ID:          r.ID,
		TripDetails: r.TripDetails,
		CreatedAt:   r.CreatedAt.UTC(),
		ImageURLs:   urls,
		UserID:      r.UserID,
		TimeZone:    r.TimeZone,
	}, nil
}

const tripColumns = `id, user_id, trip_details, image_urls, time_zone, created_at`

type trips struct{ db *sqlx.DB }

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

	_, err = t.db.NamedExecContext(ctx, `
        INSERT INTO trips (`+tripColumns+`)
        VALUES (:id, :user_id, :trip_details, :image_urls, :time_zone, :created_at)
    `, tripRow{
		ID:          out.ID,
		UserID:      out.UserID,
		TripDetails: out.TripDetails,
		ImageURLs:   urls,
		TimeZone:    out.TimeZone,
		CreatedAt:   out.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *trips) Get(ctx context.Context, tripID string) (*model.TripRecord, error) {
	var row tripRow
	err := t.db.GetContext(ctx, &row, t.db.Rebind(`SELECT `+tripColumns+` FROM trips WHERE id = ?`), tripID)
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

	var (
		where strings.Builder
		args  []any
	)
	if req.UserID != "" {
		where.WriteString(" WHERE user_id = ?")
		args = append(args, req.UserID)
	}

	var total int
	if err := t.db.GetContext(ctx, &total, t.db.Rebind(`SELECT COUNT(*) FROM trips`+where.String()), args...); err != nil {
		return nil, 0, err
	}

	var rows []tripRow
	q := t.db.Rebind(`SELECT ` + tripColumns + ` FROM trips` + where.String() + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := t.db.SelectContext(ctx, &rows, q, append(args, limit, offset)...); err != nil {
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
	res, err := t.db.ExecContext(ctx, t.db.Rebind(`DELETE FROM trips WHERE id = ?`), tripID)
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
	UserID   string    `db:"user_id"`
	Email    string    `db:"email"`
	Name     string    `db:"name"`
	ImageURL string    `db:"image_url"`
	Status   string    `db:"status"`
	JoinedAt time.Time `db:"joined_at"`
}

func (r *userRow) user() *model.User {
	return &model.User{
		UserID:   r.UserID,
		Email:    r.Email,
		Name:     r.Name,
		ImageURL: r.ImageURL,
		Status:   r.Status,
		JoinedAt: r.JoinedAt.UTC(),
	}
}

func rowOf(m *model.User) userRow {
	return userRow{
		UserID:   m.UserID,
		Email:    m.Email,
		Name:     m.Name,
		ImageURL: m.ImageURL,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
}

const userColumns = `user_id, email, name, image_url, status, joined_at`

type users struct{ db *sqlx.DB }

func (u *users) Upsert(ctx context.Context, in *model.User) (*model.User, error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var existing userRow
	err = tx.GetContext(ctx, &existing, tx.Rebind(`SELECT `+userColumns+` FROM users WHERE user_id = ? FOR UPDATE`), in.UserID)
	var out *model.User
	switch {
	case errors.Is(err, sql.ErrNoRows):
		out = store.MergeUser(nil, in)
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO users (`+userColumns+`)
            VALUES (:user_id, :email, :name, :image_url, :status, :joined_at)
        `, rowOf(out))
	case err != nil:
		return nil, err
	default:
		out = store.MergeUser(existing.user(), in)
		_, err = tx.NamedExecContext(ctx, `
            UPDATE users SET email = :email, name = :name, image_url = :image_url, status = :status
            WHERE user_id = :user_id
        `, rowOf(out))
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var row userRow
	err := u.db.GetContext(ctx, &row, u.db.Rebind(`SELECT `+userColumns+` FROM users WHERE user_id = ?`), userID)
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
	if err := u.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}
	var rows []userRow
	q := u.db.Rebind(`SELECT ` + userColumns + ` FROM users ORDER BY joined_at DESC, user_id LIMIT ? OFFSET ?`)
	if err := u.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, 0, err
	}
	out := make([]*model.User, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].user())
	}
	return out, total, nil
}
