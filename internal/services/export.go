package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jszwec/csvutil"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

const calendarProductID = "-//travel-agency-dashboard//trips//EN"

// TripRow is one line of the trips CSV export.
type TripRow struct {
	ID             string    `csv:"id"`
	UserID         string    `csv:"userId"`
	CreatedAt      time.Time `csv:"createdAt"`
	Name           string    `csv:"name"`
	Country        string    `csv:"country"`
	Duration       int       `csv:"duration"`
	TravelStyle    string    `csv:"travelStyle"`
	Budget         string    `csv:"budget"`
	GroupType      string    `csv:"groupType"`
	EstimatedPrice string    `csv:"estimatedPrice"`
	ImageCount     int       `csv:"imageCount"`
}

func rowFromRecord(rec *model.TripRecord) TripRow {
	row := TripRow{
		ID:         rec.ID,
		UserID:     rec.UserID,
		CreatedAt:  rec.CreatedAt.UTC(),
		ImageCount: len(rec.ImageURLs),
	}
	// A record whose details no longer decode still exports its envelope.
	if it, err := rec.Details(); err == nil {
		row.Name = it.Name
		row.Country = it.Country
		row.Duration = int(it.Duration)
		row.TravelStyle = it.TravelStyle
		row.Budget = it.Budget
		row.GroupType = it.GroupType
		row.EstimatedPrice = string(it.EstimatedPrice)
	}
	return row
}

// ExportCSV writes every trip matching userID ("" for all) as CSV, newest first.
// Returns the number of data rows written.
func (s *TripService) ExportCSV(ctx context.Context, w io.Writer, userID string) (int, error) {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(TripRow{}); err != nil {
		return 0, err
	}

	n := 0
	for {
		page, total, err := s.store.Trips().List(ctx, model.ListTripsRequest{
			UserID: userID, Limit: model.MaxPageSize, Offset: n,
		})
		if err != nil {
			return n, err
		}
		for _, rec := range page {
			if err := enc.Encode(rowFromRecord(rec)); err != nil {
				return n, err
			}
			n++
		}
		if len(page) == 0 || n >= total {
			break
		}
	}
	cw.Flush()
	return n, cw.Error()
}

// Calendar renders the trip itinerary as an iCalendar document with one
// all-day event per day, starting at start (today, UTC, when zero).
func (s *TripService) Calendar(ctx context.Context, tripID string, start time.Time) (string, error) {
	rec, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return "", err
	}
	it, err := rec.Details()
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrMalformedItinerary, err)
	}
	if start.IsZero() {
		start = s.now()
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	if it.Name != "" {
		cal.SetXWRCalName(it.Name)
	}
	if rec.TimeZone != "" {
		cal.SetXWRTimezone(rec.TimeZone)
	}

	stamp := s.now()
	for i, day := range it.Itinerary {
		n := int(day.Day)
		if n <= 0 {
			n = i + 1
		}
		date := start.AddDate(0, 0, n-1)

		// Day numbers come from the model and may repeat; the UID uses the position.
		ev := cal.AddEvent(fmt.Sprintf("%s-day-%d@travel-agency-dashboard", rec.ID, i+1))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(date)
		ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		ev.SetSummary(daySummary(n, day.Location))
		if day.Location != "" {
			ev.SetLocation(day.Location)
		}
		if desc := dayDescription(day.Activities); desc != "" {
			ev.SetDescription(desc)
		}
	}
	return cal.Serialize(), nil
}

func daySummary(n int, location string) string {
	if location == "" {
		return fmt.Sprintf("Day %d", n)
	}
	return fmt.Sprintf("Day %d: %s", n, location)
}

func dayDescription(acts []model.Activity) string {
	lines := make([]string, 0, len(acts))
	for _, a := range acts {
		switch {
		case a.Time != "" && a.Description != "":
			lines = append(lines, a.Time+": "+a.Description)
		case a.Description != "":
			lines = append(lines, a.Description)
		}
	}
	return strings.Join(lines, "\n")
}
