// Package spanner is the Cloud Spanner store driver.
package spanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
)

// DDL lists the tables and indexes the store expects, keyed by object name.
var DDL = []struct{ Name, Stmt string }{
	{"Trips", `CREATE TABLE Trips (
        TripId      STRING(36) NOT NULL,
        UserId      STRING(255) NOT NULL,
        TripDetails STRING(MAX) NOT NULL,
        ImageUrls   ARRAY<STRING(MAX)>,
        TimeZone    STRING(64),
        CreatedAt   TIMESTAMP NOT NULL,
    ) PRIMARY KEY (TripId)`},
	{"TripsByUserCreated", `CREATE INDEX TripsByUserCreated ON Trips(UserId, CreatedAt DESC)`},
	{"Users", `CREATE TABLE Users (
        UserId   STRING(255) NOT NULL,
        Email    STRING(320) NOT NULL,
        Name     STRING(MAX),
        ImageUrl STRING(MAX),
        Status   STRING(16) NOT NULL,
        JoinedAt TIMESTAMP NOT NULL,
    ) PRIMARY KEY (UserId)`},
}

// Open creates a client for databasePath (projects/p/instances/i/databases/d).
// endpoint overrides the API host; the emulator is picked up from SPANNER_EMULATOR_HOST.
func Open(ctx context.Context, databasePath, endpoint string, extra ...option.ClientOption) (*spanner.Client, error) {
	if databasePath == "" {
		return nil, fmt.Errorf("spanner database path is empty")
	}
	opts := append([]option.ClientOption{}, extra...)
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return spanner.NewClient(ctx, databasePath, opts...)
}

// EnsureSchema creates any missing table or index from DDL.
func EnsureSchema(ctx context.Context, client *spanner.Client, extra ...option.ClientOption) error {
	existing := map[string]bool{}
	iter := client.Single().Query(ctx, spanner.Statement{SQL: `
        SELECT TABLE_NAME AS name FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ''
        UNION ALL
        SELECT INDEX_NAME AS name FROM INFORMATION_SCHEMA.INDEXES WHERE TABLE_SCHEMA = ''`})
	err := iter.Do(func(r *spanner.Row) error {
		var name string
		if err := r.Columns(&name); err != nil {
			return err
		}
		existing[name] = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("read spanner schema: %w", err)
	}

	var missing []string
	for _, d := range DDL {
		if !existing[d.Name] {
			missing = append(missing, d.Stmt)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	admin, err := database.NewDatabaseAdminClient(ctx, extra...)
	if err != nil {
		return fmt.Errorf("spanner admin client: %w", err)
	}
	defer admin.Close()

	op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   client.DatabaseName(),
		Statements: missing,
	})
	if err != nil {
		return fmt.Errorf("update spanner ddl: %w", err)
	}
	return op.Wait(ctx)
}

// New wraps a client.
func New(client *spanner.Client) *Store { return &Store{client: client} }

type Store struct{ client *spanner.Client }

func (s *Store) Trips() store.Trips { return &trips{client: s.client} }
func (s *Store) Users() store.Users { return &users{client: s.client} }

// HealthPing implements health.HealthPinger with a trivial query.
func (s *Store) HealthPing(ctx context.Context) error {
	iter := s.client.Single().Query(ctx, spanner.Statement{SQL: "SELECT 1"})
	defer iter.Stop()
	_, err := iter.Next()
	return err
}

func (s *Store) Close() error {
	s.client.Close()
	return nil
}

func isNotFound(err error) bool { return spanner.ErrCode(err) == codes.NotFound }

// --- Trips ---

var tripColumns = []string{"TripId", "UserId", "TripDetails", "ImageUrls", "TimeZone", "CreatedAt"}

func scanTrip(r *spanner.Row) (*model.TripRecord, error) {
	var (
		out  model.TripRecord
		urls []spanner.NullString
		tz   spanner.NullString
	)
	if err := r.Columns(&out.ID, &out.UserID, &out.TripDetails, &urls, &tz, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan trip: %w", err)
	}
	out.ImageURLs = make([]string, 0, len(urls))
	for _, u := range urls {
		if u.Valid {
			out.ImageURLs = append(out.ImageURLs, u.StringVal)
		}
	}
	out.TimeZone = tz.StringVal
	out.CreatedAt = out.CreatedAt.UTC()
	return &out, nil
}

type trips struct{ client *spanner.Client }

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

	mutation := spanner.Insert("Trips", tripColumns,
		[]interface{}{out.ID, out.UserID, out.TripDetails, out.ImageURLs,
			spanner.NullString{StringVal: out.TimeZone, Valid: out.TimeZone != ""}, out.CreatedAt})
	if _, err := t.client.Apply(ctx, []*spanner.Mutation{mutation}); err != nil {
		return nil, fmt.Errorf("failed to insert trip: %w", err)
	}
	return &out, nil
}

func (t *trips) Get(ctx context.Context, tripID string) (*model.TripRecord, error) {
	row, err := t.client.Single().ReadRow(ctx, "Trips", spanner.Key{tripID}, tripColumns)
	if isNotFound(err) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return scanTrip(row)
}

func (t *trips) List(ctx context.Context, req model.ListTripsRequest) ([]*model.TripRecord, int, error) {
	limit, offset := model.ClampPage(req.Limit, req.Offset)

	where := ""
	filter := map[string]interface{}{}
	page := map[string]interface{}{"limit": int64(limit), "offset": int64(offset)}
	if req.UserID != "" {
		where = " WHERE UserId = @userId"
		filter["userId"] = req.UserID
		page["userId"] = req.UserID
	}

	// one read-only snapshot so the count and the page agree
	txn := t.client.ReadOnlyTransaction()
	defer txn.Close()

	var total int64
	countIter := txn.Query(ctx, spanner.Statement{SQL: "SELECT COUNT(*) FROM Trips" + where, Params: filter})
	defer countIter.Stop()
	row, err := countIter.Next()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}
	if err := row.Columns(&total); err != nil {
		return nil, 0, err
	}

	stmt := spanner.Statement{
		SQL: `SELECT TripId, UserId, TripDetails, ImageUrls, TimeZone, CreatedAt FROM Trips` + where +
			` ORDER BY CreatedAt DESC, TripId DESC LIMIT @limit OFFSET @offset`,
		Params: page,
	}
	var out []*model.TripRecord
	err = txn.Query(ctx, stmt).Do(func(r *spanner.Row) error {
		rec, err := scanTrip(r)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	if out == nil {
		out = []*model.TripRecord{}
	}
	return out, int(total), nil
}

func (t *trips) Delete(ctx context.Context, tripID string) error {
	var n int64
	_, err := t.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		var err error
		n, err = txn.Update(ctx, spanner.Statement{
			SQL:    `DELETE FROM Trips WHERE TripId = @tripId`,
			Params: map[string]interface{}{"tripId": tripID},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Users ---

var userColumns = []string{"UserId", "Email", "Name", "ImageUrl", "Status", "JoinedAt"}

func scanUser(r *spanner.Row) (*model.User, error) {
	var (
		out       model.User
		name, img spanner.NullString
	)
	if err := r.Columns(&out.UserID, &out.Email, &name, &img, &out.Status, &out.JoinedAt); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	out.Name = name.StringVal
	out.ImageURL = img.StringVal
	out.JoinedAt = out.JoinedAt.UTC()
	return &out, nil
}

type users struct{ client *spanner.Client }

func (u *users) Upsert(ctx context.Context, in *model.User) (*model.User, error) {
	var out *model.User
	_, err := u.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		var existing *model.User
		row, err := txn.ReadRow(ctx, "Users", spanner.Key{in.UserID}, userColumns)
		switch {
		case isNotFound(err):
		case err != nil:
			return err
		default:
			if existing, err = scanUser(row); err != nil {
				return err
			}
		}
		out = store.MergeUser(existing, in)
		return txn.BufferWrite([]*spanner.Mutation{
			spanner.InsertOrUpdate("Users", userColumns,
				[]interface{}{out.UserID, out.Email, out.Name, out.ImageURL, out.Status, out.JoinedAt}),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row, err := u.client.Single().ReadRow(ctx, "Users", spanner.Key{userID}, userColumns)
	if isNotFound(err) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return scanUser(row)
}

func (u *users) List(ctx context.Context, req model.ListUsersRequest) ([]*model.User, int, error) {
	limit, offset := model.ClampPage(req.Limit, req.Offset)

	txn := u.client.ReadOnlyTransaction()
	defer txn.Close()

	var total int64
	iter := txn.Query(ctx, spanner.Statement{SQL: "SELECT COUNT(*) FROM Users"})
	defer iter.Stop()
	row, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return []*model.User{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := row.Columns(&total); err != nil {
		return nil, 0, err
	}

	out := []*model.User{}
	err = txn.Query(ctx, spanner.Statement{
		SQL:    `SELECT UserId, Email, Name, ImageUrl, Status, JoinedAt FROM Users ORDER BY JoinedAt DESC, UserId LIMIT @limit OFFSET @offset`,
		Params: map[string]interface{}{"limit": int64(limit), "offset": int64(offset)},
	}).Do(func(r *spanner.Row) error {
		usr, err := scanUser(r)
		if err != nil {
			return err
		}
		out = append(out, usr)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return out, int(total), nil
}
