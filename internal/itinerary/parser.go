// Package itinerary turns raw generator output into a structured itinerary.
package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

const fence = "```"

// Parse extracts the itinerary JSON object from raw model output.
// The text may be wrapped in a markdown code fence (with or without a
// language tag) and may carry prose around the object. Only JSON syntax is
// checked: any object is accepted, and fields whose shape does not match the
// typed view are left empty. The compacted object is kept in Source.
// Failures wrap model.ErrMalformedItinerary.
func Parse(raw string) (*model.Itinerary, error) {
	text := StripFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", model.ErrMalformedItinerary)
	}

	obj, err := object(text)
	if err != nil {
		// Fall back to the outermost object when the model added prose.
		if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
			if o, err2 := object(text[start : end+1]); err2 == nil {
				obj, err = o, nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedItinerary, err)
	}

	var it model.Itinerary
	if err := json.Unmarshal(obj, &it); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedItinerary, err)
	}
	it.Source = obj
	return &it, nil
}

// StripFence removes one markdown code fence around s, if present, and trims
// surrounding whitespace. Text without a fence is returned trimmed.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	open := strings.Index(s, fence)
	if open < 0 {
		return s
	}
	body := s[open+len(fence):]
	// Drop the optional language tag on the opening line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLangTag(body[:nl]) {
		body = body[nl+1:]
	} else if nl < 0 && isLangTag(body) {
		return ""
	}
	if closing := strings.LastIndex(body, fence); closing >= 0 {
		body = body[:closing]
	}
	return strings.TrimSpace(body)
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}

// object returns text compacted when it is a syntactically valid JSON object.
func object(text string) (json.RawMessage, error) {
	if !strings.HasPrefix(text, "{") {
		return nil, errors.New("response is not a JSON object")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
