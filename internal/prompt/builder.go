// Package prompt renders the itinerary generation prompt from a trip request.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

const template = `Generate a %[1]d-day travel itinerary for %[2]s based on the following user information:
Budget: '%[3]s'
Interests: '%[4]s'
TravelStyle: '%[5]s'
GroupType: '%[6]s'
Return the itinerary and lowest estimated price in a clean, non-markdown JSON format with the following structure:
{
"name": "A descriptive title for the trip",
"description": "A brief description of the trip and its highlights not exceeding 100 words",
"estimatedPrice": "Lowest average price for the trip in USD, e.g.$price",
"duration": %[1]d,
"budget": %[7]s,
"travelStyle": %[8]s,
"country": %[9]s,
"interests": %[10]s,
"groupType": %[11]s,
"bestTimeToVisit": [
  "🌸 Season (from month to month): reason to visit",
  "☀️ Season (from month to month): reason to visit",
  "🍁 Season (from month to month): reason to visit",
  "❄️ Season (from month to month): reason to visit"
],
"weatherInfo": [
  "☀️ Season: temperature range in Celsius (temperature range in Fahrenheit)",
  "🌦️ Season: temperature range in Celsius (temperature range in Fahrenheit)",
  "🌧️ Season: temperature range in Celsius (temperature range in Fahrenheit)",
  "❄️ Season: temperature range in Celsius (temperature range in Fahrenheit)"
],
"location": {
  "city": "name of the city or region",
  "coordinates": [latitude, longitude],
  "openStreetMap": "link to open street map"
},
"itinerary": [
  {
    "day": 1,
    "location": "City/Region Name",
    "activities": [
      {"time": "Morning", "description": "🏰 Visit the local historic castle and enjoy a scenic walk"},
      {"time": "Afternoon", "description": "🖼️ Explore a famous art museum with a guided tour"},
      {"time": "Evening", "description": "🍷 Dine at a rooftop restaurant with local wine"}
    ]
  }
]
}
The "itinerary" array must contain exactly %[1]d entries, one per day, numbered from 1.`

// Build returns the generation prompt for req. It is deterministic and
// assumes req has already been validated.
func Build(req model.TripRequest) string {
	return fmt.Sprintf(template,
		req.NumberOfDays,
		req.Country,
		req.Budget,
		strings.Join(req.Interests, ", "),
		req.TravelStyle,
		req.GroupType,
		quote(req.Budget),
		quote(req.TravelStyle),
		quote(req.Country),
		quoteList(req.Interests),
		quote(req.GroupType),
	)
}

func quote(s string) string { return marshal(s) }

func quoteList(items []string) string {
	if items == nil {
		items = []string{}
	}
	return marshal(items)
}

// marshal encodes v as compact JSON without HTML escaping so values such as
// "Trinidad & Tobago" reach the model verbatim.
func marshal(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return strings.TrimSuffix(buf.String(), "\n")
}
