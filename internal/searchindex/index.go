// Package searchindex keeps a keyword-searchable projection of trips.
package searchindex

import (
	"context"
	"time"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// Index provides keyword search over trips and index maintenance.
type Index interface {
	// UpsertTrips writes documents keyed by trip id; re-upserting replaces.
	UpsertTrips(ctx context.Context, docs []TripDoc) error
	// DeleteTrip removes a trip; deleting an unknown id is not an error.
	DeleteTrip(ctx context.Context, tripID string) error
	Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error)
}

// TripDoc is the indexed projection of a trip record.
type TripDoc struct {
	TripID      string
	UserID      string
	Name        string
	Description string
	Country     string
	City        string
	TravelStyle string
	Budget      string
	GroupType   string
	Interests   []string
	CreatedAt   time.Time
}

// DocFromRecord projects a stored trip. Undecodable details still index the
// ids so the trip remains reachable.
func DocFromRecord(rec *model.TripRecord) TripDoc {
	doc := TripDoc{TripID: rec.ID, UserID: rec.UserID, CreatedAt: rec.CreatedAt}
	it, err := rec.Details()
	if err != nil {
		return doc
	}
	doc.Name = it.Name
	doc.Description = it.Description
	doc.Country = it.Country
	doc.TravelStyle = it.TravelStyle
	doc.Budget = it.Budget
	doc.GroupType = it.GroupType
	doc.Interests = []string(it.Interests)
	if it.Location != nil {
		doc.City = it.Location.City
	}
	return doc
}
