package searchindex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/fault"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// ClassName is the Weaviate class holding trip documents.
const ClassName = "Trip"

// objectNamespace derives stable Weaviate object ids from trip ids, which are
// not UUIDs for every store driver.
var objectNamespace = uuid.MustParse("0b6f7c4e-5b7a-4d7e-9a43-1f3c6a2d9e10")

func objectID(tripID string) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(objectNamespace, []byte(tripID)).String())
}

var searchProperties = []string{"name^2", "country^2", "city", "description", "interests", "travelStyle"}

// Weaviate is an Index backed by BM25 keyword search; no vectors are stored.
type Weaviate struct {
	client *weaviate.Client
}

// NewWeaviateIndex constructs an Index backed by Weaviate at host.
// host should be host:port (without scheme), e.g., "localhost:8081".
func NewWeaviateIndex(host string) (*Weaviate, error) {
	cl, err := weaviate.NewClient(weaviate.Config{Scheme: "http", Host: host})
	if err != nil {
		return nil, err
	}
	return &Weaviate{client: cl}, nil
}

// Bootstrap creates the Trip class when it does not exist.
func (w *Weaviate) Bootstrap(ctx context.Context) error {
	ex, err := w.client.Schema().ClassGetter().WithClassName(ClassName).Do(ctx)
	if err == nil && ex != nil {
		return nil
	}
	class := &models.Class{
		Class:       ClassName,
		Description: "Generated trip itineraries",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "tripId", DataType: []string{"text"}, Tokenization: models.PropertyTokenizationField},
			{Name: "userId", DataType: []string{"text"}, Tokenization: models.PropertyTokenizationField},
			{Name: "name", DataType: []string{"text"}},
			{Name: "description", DataType: []string{"text"}},
			{Name: "country", DataType: []string{"text"}},
			{Name: "city", DataType: []string{"text"}},
			{Name: "travelStyle", DataType: []string{"text"}},
			{Name: "budget", DataType: []string{"text"}},
			{Name: "groupType", DataType: []string{"text"}},
			{Name: "interests", DataType: []string{"text[]"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
	}
	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", ClassName, err)
	}
	return nil
}

func properties(d TripDoc) map[string]interface{} {
	interests := d.Interests
	if interests == nil {
		interests = []string{}
	}
	return map[string]interface{}{
		"tripId":      d.TripID,
		"userId":      d.UserID,
		"name":        d.Name,
		"description": d.Description,
		"country":     d.Country,
		"city":        d.City,
		"travelStyle": d.TravelStyle,
		"budget":      d.Budget,
		"groupType":   d.GroupType,
		"interests":   interests,
		"createdAt":   d.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (w *Weaviate) UpsertTrips(ctx context.Context, docs []TripDoc) error {
	if len(docs) == 0 {
		return nil
	}
	objs := make([]*models.Object, 0, len(docs))
	for _, d := range docs {
		objs = append(objs, &models.Object{
			Class:      ClassName,
			ID:         objectID(d.TripID),
			Properties: properties(d),
		})
	}
	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate batch: %w", err)
	}
	var msgs []string
	for _, r := range resp {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}
		for _, e := range r.Result.Errors.Error {
			msgs = append(msgs, fmt.Sprintf("%s: %s", r.ID, e.Message))
		}
	}
	if len(msgs) > 0 {
		return fmt.Errorf("weaviate batch: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func (w *Weaviate) DeleteTrip(ctx context.Context, tripID string) error {
	err := w.client.Data().Deleter().WithClassName(ClassName).WithID(objectID(tripID).String()).Do(ctx)
	var werr *fault.WeaviateClientError
	if errors.As(err, &werr) && werr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

func (w *Weaviate) Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error) {
	bm25 := (&gql.BM25ArgumentBuilder{}).
		WithQuery(query).
		WithProperties(searchProperties...)

	resp, err := w.client.GraphQL().Get().
		WithClassName(ClassName).
		WithBM25(bm25).
		WithLimit(limit).
		WithFields(
			gql.Field{Name: "tripId"},
			gql.Field{Name: "userId"},
			gql.Field{Name: "name"},
			gql.Field{Name: "country"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "score"}}},
		).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("weaviate graphql: %s", strings.Join(msgs, "; "))
	}
	return parseHits(resp.Data), nil
}

// parseHits extracts trip hits from a GraphQL Get payload.
func parseHits(data map[string]models.JSONObject) []model.SearchHit {
	out := []model.SearchHit{}
	getData, ok := data["Get"].(map[string]interface{})
	if !ok {
		return out
	}
	raw, ok := getData[ClassName].([]interface{})
	if !ok {
		return out
	}

	str := func(v interface{}) string {
		s, _ := v.(string)
		return s
	}
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var score float64
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			switch v := add["score"].(type) {
			case float64:
				score = v
			case string:
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					score = f
				}
			}
		}
		out = append(out, model.SearchHit{
			TripID:  str(m["tripId"]),
			Name:    str(m["name"]),
			Country: str(m["country"]),
			UserID:  str(m["userId"]),
			Score:   score,
		})
	}
	return out
}

// HealthPing implements health.HealthPinger using the readiness endpoint.
func (w *Weaviate) HealthPing(ctx context.Context) error {
	ready, err := w.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("weaviate not ready")
	}
	return nil
}
