package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/events"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/images"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/itinerary"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/prompt"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/searchindex"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/textgen"
)

// ErrSearchDisabled is returned by search operations when no index is configured.
var ErrSearchDisabled = errors.New("trip search is not configured")

// TimeZoneFinder maps coordinates to an IANA zone name ("" when unknown).
type TimeZoneFinder interface {
	GetTimezoneName(lng, lat float64) string
}

// TripDeps are the collaborators of TripService. Index, Bus and TimeZones are optional.
type TripDeps struct {
	Store     store.Store
	Generator textgen.Generator
	Images    images.Searcher
	Index     searchindex.Index
	Bus       *events.Bus
	TimeZones TimeZoneFinder
}

// TripService orchestrates trip generation and the trip read/admin use cases.
type TripService struct {
	store  store.Store
	gen    textgen.Generator
	images images.Searcher
	idx    searchindex.Index
	bus    *events.Bus
	tz     TimeZoneFinder
	log    zerolog.Logger
	now    func() time.Time
}

func NewTripService(deps TripDeps, log zerolog.Logger) *TripService {
	img := deps.Images
	if img == nil {
		img = images.Noop{}
	}
	return &TripService{
		store:  deps.Store,
		gen:    deps.Generator,
		images: img,
		idx:    deps.Index,
		bus:    deps.Bus,
		tz:     deps.TimeZones,
		log:    log,
		now:    store.Now,
	}
}

// CreateTrip runs the generation pipeline for one request and returns the new trip id.
// Nothing leaves the process until the request validates. The record is written last.
func (s *TripService) CreateTrip(ctx context.Context, req model.TripRequest) (string, error) {
	req = NormalizeTripRequest(req)
	if err := ValidateTripRequest(req); err != nil {
		s.logFailure(req, err)
		return "", err
	}

	text := prompt.Build(req)
	query := images.Query(req.Country, req.Interests, req.TravelStyle)

	var (
		raw  string
		urls []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.gen.Generate(gctx, text)
		if err != nil {
			return model.Fail(model.FailureGeneration, fmt.Errorf("%w: %v", model.ErrUpstreamGeneration, err))
		}
		raw = out
		return nil
	})
	g.Go(func() error {
		urls = s.images.Search(gctx, query)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logFailure(req, err)
		return "", err
	}
	if len(urls) == 0 {
		s.log.Warn().Str("query", query).Str("userId", req.UserID).Msg("image search degraded; persisting trip without images")
	}

	it, err := itinerary.Parse(raw)
	if err != nil {
		err = model.Fail(model.FailureMalformedItinerary, err)
		s.logFailure(req, err)
		return "", err
	}

	rec := &model.TripRecord{
		TripDetails: string(it.Source),
		CreatedAt:   s.now(),
		ImageURLs:   capImages(urls),
		UserID:      req.UserID,
		TimeZone:    s.timeZone(it),
	}
	created, err := s.store.Trips().Create(ctx, rec)
	if err != nil {
		err = model.Fail(model.FailurePersistence, fmt.Errorf("%w: %v", model.ErrPersistence, err))
		s.logFailure(req, err)
		return "", err
	}

	if s.idx != nil && !s.bus.Publish(events.Event{Kind: events.TripCreated, TripID: created.ID, UserID: created.UserID}) {
		s.log.Warn().Str("tripId", created.ID).Msg("index event dropped; reindex to recover")
	}
	s.log.Info().
		Str("tripId", created.ID).
		Str("userId", created.UserID).
		Str("country", req.Country).
		Int("days", req.NumberOfDays).
		Int("images", len(created.ImageURLs)).
		Msg("trip created")
	return created.ID, nil
}

func capImages(urls []string) []string {
	if len(urls) > model.MaxTripImages {
		urls = urls[:model.MaxTripImages]
	}
	return append([]string{}, urls...)
}

func (s *TripService) timeZone(it *model.Itinerary) string {
	if s.tz == nil {
		return ""
	}
	lat, lng, ok := it.Location.LatLng()
	if !ok || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ""
	}
	return s.tz.GetTimezoneName(lng, lat)
}

func (s *TripService) logFailure(req model.TripRequest, err error) {
	kind := model.KindOf(err)
	ev := s.log.Error()
	if kind == model.FailureValidation {
		ev = s.log.Warn()
	}
	ev.Stack().Err(err).
		Str("kind", kind.String()).
		Str("country", req.Country).
		Str("userId", req.UserID).
		Int("days", req.NumberOfDays).
		Msg("trip request failed")
}

// GetTrip returns one trip or model.ErrNotFound.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*model.TripRecord, error) {
	if strings.TrimSpace(tripID) == "" {
		return nil, model.ErrNotFound
	}
	return s.store.Trips().Get(ctx, tripID)
}

// ListTrips returns one page, newest first, with the total count.
func (s *TripService) ListTrips(ctx context.Context, req model.ListTripsRequest) ([]*model.TripRecord, int, error) {
	req.Limit, req.Offset = model.ClampPage(req.Limit, req.Offset)
	return s.store.Trips().List(ctx, req)
}

// DeleteTrip removes the record, then its index document. An index failure is
// logged and handed to the indexer to retry; it does not fail the delete.
func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	if err := s.store.Trips().Delete(ctx, tripID); err != nil {
		return err
	}
	if s.idx == nil {
		return nil
	}
	if err := s.idx.DeleteTrip(ctx, tripID); err != nil {
		s.log.Warn().Err(err).Str("tripId", tripID).Msg("index delete failed; queued for retry")
		s.bus.Publish(events.Event{Kind: events.TripDeleted, TripID: tripID})
	}
	return nil
}

// SearchTrips runs a keyword query against the index.
func (s *TripService) SearchTrips(ctx context.Context, query string, limit int) ([]model.SearchHit, error) {
	if s.idx == nil {
		return nil, ErrSearchDisabled
	}
	query = clean(query)
	if query == "" {
		return nil, invalid("query is required")
	}
	limit, _ = model.ClampPage(limit, 0)
	return s.idx.Search(ctx, query, limit)
}

// Reindex rebuilds the index from the store and returns the number of trips written.
func (s *TripService) Reindex(ctx context.Context) (int, error) {
	if s.idx == nil {
		return 0, ErrSearchDisabled
	}
	n, err := searchindex.Reindex(ctx, s.store.Trips(), s.idx)
	if err != nil {
		s.log.Error().Err(err).Int("indexed", n).Msg("reindex failed")
		return n, err
	}
	s.log.Info().Int("indexed", n).Msg("reindex completed")
	return n, nil
}
