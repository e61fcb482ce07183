package model

import (
	"encoding/json"
	"time"
)

// Trip request limits.
const (
	MinTripDays = 1
	MaxTripDays = 10

	// MaxTripImages bounds the enrichment images stored per trip.
	MaxTripImages = 3
)

// Paging defaults shared by list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Account statuses.
const (
	UserStatusUser  = "user"
	UserStatusAdmin = "admin"
)

// TripRequest is the validated form submission driving one generation.
type TripRequest struct {
	Country      string   `json:"country"`
	NumberOfDays int      `json:"numberOfDays"`
	TravelStyle  string   `json:"travelStyle"`
	Interests    []string `json:"interests"`
	Budget       string   `json:"budget"`
	GroupType    string   `json:"groupType"`
	UserID       string   `json:"userId"`
}

// Itinerary is the structured plan parsed from model output. Every field is
// optional; the generator is asked for all of them but nothing is enforced.
// Source keeps the compacted JSON object exactly as the model produced it.
type Itinerary struct {
	Source json.RawMessage `json:"-"`

	Name            string     `json:"name,omitempty"`
	Description     string     `json:"description,omitempty"`
	EstimatedPrice  FlexString `json:"estimatedPrice,omitempty"`
	Duration        FlexInt    `json:"duration,omitempty"`
	Budget          string     `json:"budget,omitempty"`
	TravelStyle     string     `json:"travelStyle,omitempty"`
	Country         string     `json:"country,omitempty"`
	Interests       StringList `json:"interests,omitempty"`
	GroupType       string     `json:"groupType,omitempty"`
	BestTimeToVisit []string   `json:"bestTimeToVisit,omitempty"`
	WeatherInfo     []string   `json:"weatherInfo,omitempty"`
	Location        *Location  `json:"location,omitempty"`
	Itinerary       []DayPlan  `json:"itinerary,omitempty"`
}

// Location holds the trip's main city and map coordinates as [lat, lng].
type Location struct {
	City          string    `json:"city,omitempty"`
	Coordinates   []float64 `json:"coordinates,omitempty"`
	OpenStreetMap string    `json:"openStreetMap,omitempty"`
}

// LatLng returns the coordinate pair when both values are present.
func (l *Location) LatLng() (lat, lng float64, ok bool) {
	if l == nil || len(l.Coordinates) < 2 {
		return 0, 0, false
	}
	return l.Coordinates[0], l.Coordinates[1], true
}

type DayPlan struct {
	Day        FlexInt    `json:"day"`
	Location   string     `json:"location,omitempty"`
	Activities []Activity `json:"activities,omitempty"`
}

type Activity struct {
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
}

// TripRecord is the persisted result of one successful generation.
type TripRecord struct {
	ID          string    `json:"id"`
	TripDetails string    `json:"tripDetails"`
	CreatedAt   time.Time `json:"createdAt"`
	ImageURLs   []string  `json:"imageUrls"`
	UserID      string    `json:"userId"`
	TimeZone    string    `json:"timeZone,omitempty"`
}

// Details decodes the serialized itinerary. It fails only when TripDetails is
// not a JSON object; fields of an unexpected shape come back empty.
func (r *TripRecord) Details() (*Itinerary, error) {
	var it Itinerary
	if err := json.Unmarshal([]byte(r.TripDetails), &it); err != nil {
		return nil, err
	}
	it.Source = json.RawMessage(r.TripDetails)
	return &it, nil
}

// User is an account known to the dashboard.
type User struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	ImageURL string    `json:"imageUrl,omitempty"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ListTripsRequest filters a trip listing. Empty UserID lists all trips.
type ListTripsRequest struct {
	UserID string
	Limit  int
	Offset int
}

type ListUsersRequest struct {
	Limit  int
	Offset int
}

// ClampPage applies the default and maximum page size and a non-negative offset.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// SearchHit is one trip returned by the search index.
type SearchHit struct {
	TripID  string  `json:"tripId"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	UserID  string  `json:"userId"`
	Score   float64 `json:"score"`
}
