package model

import (
	"encoding/json"
	"strconv"
)

// Model output is only guaranteed to be a JSON object. The typed views below
// decode each known field on its own; a field with an unexpected shape is left
// empty and the rest of the document still decodes.

func (it *Itinerary) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*it = Itinerary{}
	lenient(fields, "name", &it.Name)
	lenient(fields, "description", &it.Description)
	lenient(fields, "estimatedPrice", &it.EstimatedPrice)
	lenient(fields, "duration", &it.Duration)
	lenient(fields, "budget", &it.Budget)
	lenient(fields, "travelStyle", &it.TravelStyle)
	lenient(fields, "country", &it.Country)
	lenient(fields, "interests", &it.Interests)
	lenient(fields, "groupType", &it.GroupType)
	lenient(fields, "bestTimeToVisit", (*StringList)(&it.BestTimeToVisit))
	lenient(fields, "weatherInfo", (*StringList)(&it.WeatherInfo))
	lenient(fields, "location", &it.Location)

	var days []json.RawMessage
	if lenient(fields, "itinerary", &days) {
		for _, raw := range days {
			var day DayPlan
			if json.Unmarshal(raw, &day) == nil {
				it.Itinerary = append(it.Itinerary, day)
			}
		}
	}
	return nil
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*l = Location{}
	lenient(fields, "city", &l.City)
	lenient(fields, "openStreetMap", &l.OpenStreetMap)

	var coords []FlexString
	if lenient(fields, "coordinates", &coords) {
		for _, c := range coords {
			f, err := strconv.ParseFloat(string(c), 64)
			if err != nil {
				l.Coordinates = nil
				break
			}
			l.Coordinates = append(l.Coordinates, f)
		}
	}
	return nil
}

func (d *DayPlan) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = DayPlan{}
	lenient(fields, "day", &d.Day)
	lenient(fields, "location", &d.Location)

	var acts []json.RawMessage
	if lenient(fields, "activities", &acts) {
		for _, raw := range acts {
			var a Activity
			if lenientActivity(raw, &a) {
				d.Activities = append(d.Activities, a)
			}
		}
	}
	return nil
}

// lenientActivity accepts an activity object or a bare description string.
func lenientActivity(raw json.RawMessage, a *Activity) bool {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		a.Description = s
		return s != ""
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return false
	}
	lenient(fields, "time", &a.Time)
	lenient(fields, "description", &a.Description)
	return true
}

// lenient decodes fields[key] into dst and reports whether it did. dst is left
// untouched when the key is absent or its value has another shape.
func lenient[T any](fields map[string]json.RawMessage, key string, dst *T) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}
