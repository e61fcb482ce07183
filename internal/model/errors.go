package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	ErrUpstreamGeneration = errors.New("itinerary generation failed")
	ErrMalformedItinerary = errors.New("malformed itinerary")
	ErrPersistence        = errors.New("trip persistence failed")
)

// FailureKind records which pipeline stage ended a trip request.
// It is kept internally; the HTTP contract only distinguishes 400 from 500.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureValidation
	FailureGeneration
	FailureMalformedItinerary
	FailurePersistence
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureValidation:
		return "validation"
	case FailureGeneration:
		return "generation"
	case FailureMalformedItinerary:
		return "malformed_itinerary"
	case FailurePersistence:
		return "persistence"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureValidation:
		return ErrValidation
	case FailureGeneration:
		return ErrUpstreamGeneration
	case FailureMalformedItinerary:
		return ErrMalformedItinerary
	case FailurePersistence:
		return ErrPersistence
	}
	return nil
}

// PipelineError is a terminal trip-request failure tagged with its stage.
type PipelineError struct {
	Kind FailureKind
	Err  error
}

// Fail wraps err as a terminal failure of the given kind.
func Fail(kind FailureKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		if s := e.Kind.sentinel(); s != nil {
			return s.Error()
		}
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Is matches the stage sentinel so callers can use errors.Is(err, ErrPersistence).
func (e *PipelineError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the failure stage carried by err, or FailureNone.
func KindOf(err error) FailureKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureNone
}
