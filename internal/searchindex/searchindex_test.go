package searchindex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/events"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store/storetest"
)

type fakeIndex struct {
	mu        sync.Mutex
	docs      map[string]TripDoc
	batches   []int
	upsertErr error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]TripDoc{}} }

func (f *fakeIndex) UpsertTrips(_ context.Context, docs []TripDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.batches = append(f.batches, len(docs))
	for _, d := range docs {
		f.docs[d.TripID] = d
	}
	return nil
}

func (f *fakeIndex) DeleteTrip(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int) ([]model.SearchHit, error) { return nil, nil }

func (f *fakeIndex) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	return ok
}

func TestDocFromRecord(t *testing.T) {
	rec := &model.TripRecord{
		ID:          "t1",
		UserID:      "u1",
		TripDetails: `{"name":"Kyoto Calm","country":"Japan","interests":"food","location":{"city":"Kyoto"},"travelStyle":"Relaxed"}`,
	}
	doc := DocFromRecord(rec)
	assert.Equal(t, "Kyoto Calm", doc.Name)
	assert.Equal(t, "Japan", doc.Country)
	assert.Equal(t, "Kyoto", doc.City)
	assert.Equal(t, []string{"food"}, doc.Interests)

	broken := DocFromRecord(&model.TripRecord{ID: "t2", UserID: "u2", TripDetails: "not json"})
	assert.Equal(t, TripDoc{TripID: "t2", UserID: "u2"}, broken)
}

func TestObjectIDStable(t *testing.T) {
	assert.Equal(t, objectID("abc"), objectID("abc"))
	assert.NotEqual(t, objectID("abc"), objectID("abd"))
	assert.Len(t, objectID("64f1c0ffee").String(), 36)
}

func TestParseHits(t *testing.T) {
	data := map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"Trip": []interface{}{
				map[string]interface{}{
					"tripId": "t1", "name": "Kyoto Calm", "country": "Japan", "userId": "u1",
					"_additional": map[string]interface{}{"score": "2.5"},
				},
				map[string]interface{}{
					"tripId": "t2", "_additional": map[string]interface{}{"score": 1.25},
				},
				"garbage",
			},
		},
	}
	hits := parseHits(data)
	require.Len(t, hits, 2)
	assert.Equal(t, model.SearchHit{TripID: "t1", Name: "Kyoto Calm", Country: "Japan", UserID: "u1", Score: 2.5}, hits[0])
	assert.Equal(t, 1.25, hits[1].Score)

	assert.Empty(t, parseHits(map[string]models.JSONObject{}))
	assert.NotNil(t, parseHits(map[string]models.JSONObject{"Get": map[string]interface{}{"Trip": nil}}))
}

func TestIndexer_AppliesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := storetest.NewMemory()
	rec, err := mem.Trips().Create(ctx, &model.TripRecord{TripDetails: `{"name":"Lima Eats"}`, UserID: "u1"})
	require.NoError(t, err)

	idx := newFakeIndex()
	bus := events.NewBus(8)
	go NewIndexer(idx, mem.Trips(), bus, zerolog.Nop()).Run(ctx)

	bus.Publish(events.Event{Kind: events.TripCreated, TripID: rec.ID, UserID: "u1"})
	assert.Eventually(t, func() bool { return idx.has(rec.ID) }, time.Second, 5*time.Millisecond)

	bus.Publish(events.Event{Kind: events.TripDeleted, TripID: rec.ID})
	assert.Eventually(t, func() bool { return !idx.has(rec.ID) }, time.Second, 5*time.Millisecond)
}

func TestIndexer_HandleMissingTrip(t *testing.T) {
	ix := NewIndexer(newFakeIndex(), storetest.NewMemory().Trips(), events.NewBus(1), zerolog.Nop())
	require.NoError(t, ix.Handle(context.Background(), events.Event{Kind: events.TripCreated, TripID: "gone"}))
	require.NoError(t, ix.Handle(context.Background(), events.Event{Kind: "unknown"}))
}

func TestReindex_Batches(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	for i := 0; i < ReindexBatchSize+5; i++ {
		_, err := mem.Trips().Create(ctx, &model.TripRecord{TripDetails: `{}`, UserID: "u"})
		require.NoError(t, err)
	}

	idx := newFakeIndex()
	n, err := Reindex(ctx, mem.Trips(), idx)
	require.NoError(t, err)
	assert.Equal(t, ReindexBatchSize+5, n)
	assert.Equal(t, []int{ReindexBatchSize, 5}, idx.batches)
}

func TestReindex_Errors(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	_, err := mem.Trips().Create(ctx, &model.TripRecord{TripDetails: `{}`})
	require.NoError(t, err)

	idx := newFakeIndex()
	idx.upsertErr = errors.New("weaviate down")
	n, err := Reindex(ctx, mem.Trips(), idx)
	require.Error(t, err)
	assert.Equal(t, 0, n)

	mem.Err = errors.New("store down")
	_, err = Reindex(ctx, mem.Trips(), newFakeIndex())
	require.Error(t, err)
}
