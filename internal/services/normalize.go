package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// ErrMissingFields is the validation message for an incomplete trip form.
var ErrMissingFields = errors.New("Missing required fields")

func clean(s string) string { return norm.NFC.String(strings.TrimSpace(s)) }

// NormalizeTripRequest trims and NFC-normalizes every text field and drops
// blank interests, keeping their order.
func NormalizeTripRequest(req model.TripRequest) model.TripRequest {
	req.Country = clean(req.Country)
	req.TravelStyle = clean(req.TravelStyle)
	req.Budget = clean(req.Budget)
	req.GroupType = clean(req.GroupType)
	req.UserID = strings.TrimSpace(req.UserID)
	req.Interests = lo.Compact(lo.Map(req.Interests, func(s string, _ int) string { return clean(s) }))
	return req
}

// ValidateTripRequest checks presence of all seven fields, then the day range.
func ValidateTripRequest(req model.TripRequest) error {
	required := []string{req.Country, req.TravelStyle, req.Budget, req.GroupType, req.UserID}
	if lo.Contains(required, "") || len(req.Interests) == 0 || req.NumberOfDays == 0 {
		return model.Fail(model.FailureValidation, ErrMissingFields)
	}
	if req.NumberOfDays < model.MinTripDays || req.NumberOfDays > model.MaxTripDays {
		return model.Fail(model.FailureValidation,
			fmt.Errorf("numberOfDays must be between %d and %d", model.MinTripDays, model.MaxTripDays))
	}
	return nil
}

// invalid builds a validation failure whose message is shown to the caller.
func invalid(format string, args ...any) error {
	return model.Fail(model.FailureValidation, fmt.Errorf(format, args...))
}
