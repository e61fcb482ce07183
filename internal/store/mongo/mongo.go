// Package mongo is the default document store driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
)

// Options names the database and collections used by the store.
type Options struct {
	Database       string
	TripCollection string
	UserCollection string
}

// Open connects to uri, verifies the primary is reachable and ensures indexes.
func Open(ctx context.Context, uri string, opts Options) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s := New(client, opts)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New builds a store on a connected client.
func New(client *mongo.Client, opts Options) *Store {
	if opts.TripCollection == "" {
		opts.TripCollection = "trips"
	}
	if opts.UserCollection == "" {
		opts.UserCollection = "users"
	}
	db := client.Database(opts.Database)
	return &Store{
		client: client,
		trips:  db.Collection(opts.TripCollection),
		users:  db.Collection(opts.UserCollection),
	}
}

type Store struct {
	client *mongo.Client
	trips  *mongo.Collection
	users  *mongo.Collection
}

func (s *Store) Trips() store.Trips { return &trips{coll: s.trips} }
func (s *Store) Users() store.Users { return &users{coll: s.users} }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the listing indexes; it is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.trips.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("trip indexes: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "joinedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

// --- Trips ---

type tripDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TripDetails string             `bson:"tripDetails"`
	CreatedAt   time.Time          `bson:"createdAt"`
	ImageURLs   []string           `bson:"imageUrls"`
	UserID      string             `bson:"userId"`
	TimeZone    string             `bson:"timeZone,omitempty"`
}

func (d *tripDoc) record() *model.TripRecord {
	urls := d.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return &model.TripRecord{
		ID:          d.ID.Hex(),
		TripDetails: d.TripDetails,
		CreatedAt:   d.CreatedAt.UTC(),
		ImageURLs:   urls,
		UserID:      d.UserID,
		TimeZone:    d.TimeZone,
	}
}

type trips struct{ coll *mongo.Collection }

func (t *trips) Create(ctx context.Context, in *model.TripRecord) (*model.TripRecord, error) {
	doc := tripDoc{
		TripDetails: in.TripDetails,
		CreatedAt:   in.CreatedAt.UTC().Truncate(time.Millisecond),
		ImageURLs:   in.ImageURLs,
		UserID:      in.UserID,
		TimeZone:    in.TimeZone,
	}
	if in.CreatedAt.IsZero() {
		doc.CreatedAt = store.Now()
	}
	if doc.ImageURLs == nil {
		doc.ImageURLs = []string{}
	}

	res, err := t.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.record(), nil
}

func (t *trips) Get(ctx context.Context, tripID string) (*model.TripRecord, error) {
	oid, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return nil, model.ErrNotFound
	}
	var doc tripDoc
	if err := t.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return doc.record(), nil
}

func (t *trips) List(ctx context.Context, req model.ListTripsRequest) ([]*model.TripRecord, int, error) {
	limit, offset := model.ClampPage(req.Limit, req.Offset)

	filter := bson.M{}
	if req.UserID != "" {
		filter["userId"] = req.UserID
	}
	total, err := t.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := t.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	var docs []tripDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*model.TripRecord, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].record())
	}
	return out, int(total), nil
}

func (t *trips) Delete(ctx context.Context, tripID string) error {
	oid, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return model.ErrNotFound
	}
	res, err := t.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Users ---

// userDoc keys users by their account id.
type userDoc struct {
	UserID   string    `bson:"_id"`
	Email    string    `bson:"email"`
	Name     string    `bson:"name"`
	ImageURL string    `bson:"imageUrl,omitempty"`
	Status   string    `bson:"status"`
	JoinedAt time.Time `bson:"joinedAt"`
}

func (d *userDoc) user() *model.User {
	return &model.User{
		UserID:   d.UserID,
		Email:    d.Email,
		Name:     d.Name,
		ImageURL: d.ImageURL,
		Status:   d.Status,
		JoinedAt: d.JoinedAt.UTC(),
	}
}

type users struct{ coll *mongo.Collection }

func (u *users) Upsert(ctx context.Context, in *model.User) (*model.User, error) {
	fresh := store.MergeUser(nil, in)

	set := bson.M{"email": in.Email, "name": in.Name, "imageUrl": in.ImageURL}
	onInsert := bson.M{"joinedAt": fresh.JoinedAt}
	if in.Status != "" {
		set["status"] = in.Status
	} else {
		onInsert["status"] = fresh.Status
	}

	var doc userDoc
	err := u.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": in.UserID},
		bson.M{"$set": set, "$setOnInsert": onInsert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc.user(), nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var doc userDoc
	if err := u.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return doc.user(), nil
}

func (u *users) List(ctx context.Context, req model.ListUsersRequest) ([]*model.User, int, error) {
	limit, offset := model.ClampPage(req.Limit, req.Offset)

	total, err := u.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	cur, err := u.coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "joinedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*model.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].user())
	}
	return out, int(total), nil
}
