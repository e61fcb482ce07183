package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/api/respond"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/services"
)

const createTripFailed = "Failed to generate a trip"

// TripHandler serves the trip generation endpoint and the trip read/admin endpoints.
type TripHandler struct {
	svc *services.TripService
	log zerolog.Logger
}

func NewTripHandler(svc *services.TripService, log zerolog.Logger) *TripHandler {
	return &TripHandler{svc: svc, log: log}
}

// CreateTripRequest is the form body; interests may be a string or a list and
// numberOfDays a number or numeric string.
type CreateTripRequest struct {
	Country      string           `json:"country"`
	NumberOfDays model.FlexInt    `json:"numberOfDays"`
	TravelStyle  string           `json:"travelStyle"`
	Interests    model.StringList `json:"interests"`
	Budget       string           `json:"budget"`
	GroupType    string           `json:"groupType"`
	UserID       string           `json:"userId"`
}

func (r CreateTripRequest) toModel() model.TripRequest {
	return model.TripRequest{
		Country:      r.Country,
		NumberOfDays: int(r.NumberOfDays),
		TravelStyle:  r.TravelStyle,
		Interests:    []string(r.Interests),
		Budget:       r.Budget,
		GroupType:    r.GroupType,
		UserID:       r.UserID,
	}
}

// TripView is a trip record with its details decoded for the client.
type TripView struct {
	ID          string          `json:"id"`
	TripDetails json.RawMessage `json:"tripDetails"`
	CreatedAt   time.Time       `json:"createdAt"`
	ImageURLs   []string        `json:"imageUrls"`
	UserID      string          `json:"userId"`
	TimeZone    string          `json:"timeZone,omitempty"`
}

func viewOf(rec *model.TripRecord) TripView {
	details := json.RawMessage(rec.TripDetails)
	if !json.Valid(details) {
		details = json.RawMessage("null")
	}
	urls := rec.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return TripView{
		ID:          rec.ID,
		TripDetails: details,
		CreatedAt:   rec.CreatedAt,
		ImageURLs:   urls,
		UserID:      rec.UserID,
		TimeZone:    rec.TimeZone,
	}
}

// CreateTrip handles POST /api/create-trip.
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	if id := auth.FromContext(r.Context()); id != nil {
		if body.UserID == "" {
			body.UserID = id.UserID
		}
		if err := auth.CheckOwner(id, body.UserID); err != nil {
			respond.WriteError(w, http.StatusForbidden, "userId does not match the authenticated user")
			return
		}
	}

	tripID, err := h.svc.CreateTrip(r.Context(), body.toModel())
	if err != nil {
		writeServiceError(w, h.log, err, createTripFailed)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"id": tripID})
}

// GetTrip handles GET /api/trips/{tripId}.
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	respond.WriteJSON(w, http.StatusOK, viewOf(rec))
}

// ListTrips handles GET /api/trips. Non-admin callers only see their own trips.
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := pageParams(q.Get("limit"), q.Get("offset"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	userID := q.Get("userId")
	if id := auth.FromContext(r.Context()); id != nil && !id.IsAdmin() {
		if userID == "" {
			userID = id.UserID
		}
		if err := auth.CheckOwner(id, userID); err != nil {
			respond.WriteError(w, http.StatusForbidden, err.Error())
			return
		}
	}

	recs, total, err := h.svc.ListTrips(r.Context(), model.ListTripsRequest{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list trips")
		return
	}
	views := make([]TripView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, viewOf(rec))
	}
	limit, offset = model.ClampPage(limit, offset)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trips":  views,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Calendar handles GET /api/trips/{tripId}/calendar.ics?start=YYYY-MM-DD.
func (h *TripHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	var start time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.WriteBadRequest(w, "start must be a YYYY-MM-DD date")
			return
		}
		start = t
	}
	rec, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Calendar(r.Context(), rec.ID, start)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to render calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trip-`+rec.ID+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// DeleteTrip handles DELETE /api/admin/trips/{tripId}.
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["tripId"]
	if err := h.svc.DeleteTrip(r.Context(), tripID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV handles GET /api/admin/trips/export.csv?userId=.
func (h *TripHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.svc.ExportCSV(r.Context(), &buf, r.URL.Query().Get("userId"))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to export trips")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("X-Total-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// SearchTrips handles GET /api/admin/trips/search?q=&limit=.
func (h *TripHandler) SearchTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _, err := pageParams(q.Get("limit"), "")
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	hits, err := h.svc.SearchTrips(r.Context(), q.Get("q"), limit)
	if err != nil {
		writeServiceError(w, h.log, err, "Search failed")
		return
	}
	if hits == nil {
		hits = []model.SearchHit{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": hits, "count": len(hits)})
}

// Reindex handles POST /api/admin/trips/reindex.
func (h *TripHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Reindex(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Reindex failed")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]int{"indexed": n})
}

func (h *TripHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*model.TripRecord, bool) {
	rec, err := h.svc.GetTrip(r.Context(), mux.Vars(r)["tripId"])
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load trip")
		return nil, false
	}
	if err := auth.CheckOwner(auth.FromContext(r.Context()), rec.UserID); err != nil {
		respond.WriteError(w, http.StatusForbidden, err.Error())
		return nil, false
	}
	return rec, true
}
