package searchindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/events"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
)

// ReindexBatchSize is the page size used when rebuilding the index.
const ReindexBatchSize = model.MaxPageSize

// Indexer applies trip events from the bus to the index. Failures are logged;
// a later Reindex repairs anything missed.
type Indexer struct {
	idx   Index
	trips store.Trips
	bus   *events.Bus
	log   zerolog.Logger
}

func NewIndexer(idx Index, trips store.Trips, bus *events.Bus, log zerolog.Logger) *Indexer {
	return &Indexer{idx: idx, trips: trips, bus: bus, log: log}
}

// Run consumes events until ctx is cancelled.
func (ix *Indexer) Run(ctx context.Context) {
	ch := ix.bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			if err := ix.Handle(ctx, evt); err != nil {
				ix.log.Error().Err(err).
					Str("kind", string(evt.Kind)).
					Str("tripId", evt.TripID).
					Msg("index update failed")
			}
		}
	}
}

// Handle applies one event.
func (ix *Indexer) Handle(ctx context.Context, evt events.Event) error {
	switch evt.Kind {
	case events.TripCreated:
		rec, err := ix.trips.Get(ctx, evt.TripID)
		if errors.Is(err, model.ErrNotFound) {
			// deleted before we got to it
			return nil
		}
		if err != nil {
			return fmt.Errorf("load trip: %w", err)
		}
		return ix.idx.UpsertTrips(ctx, []TripDoc{DocFromRecord(rec)})
	case events.TripDeleted:
		return ix.idx.DeleteTrip(ctx, evt.TripID)
	default:
		ix.log.Warn().Str("kind", string(evt.Kind)).Msg("ignoring unknown event kind")
		return nil
	}
}

// Reindex pages through every stored trip, newest first, and upserts each
// page. It returns the number of trips indexed.
func Reindex(ctx context.Context, trips store.Trips, idx Index) (int, error) {
	n := 0
	for offset := 0; ; offset += ReindexBatchSize {
		page, _, err := trips.List(ctx, model.ListTripsRequest{Limit: ReindexBatchSize, Offset: offset})
		if err != nil {
			return n, fmt.Errorf("list trips at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			return n, nil
		}
		docs := make([]TripDoc, 0, len(page))
		for _, rec := range page {
			docs = append(docs, DocFromRecord(rec))
		}
		if err := idx.UpsertTrips(ctx, docs); err != nil {
			return n, fmt.Errorf("upsert batch at offset %d: %w", offset, err)
		}
		n += len(docs)
		if len(page) < ReindexBatchSize {
			return n, nil
		}
	}
}
