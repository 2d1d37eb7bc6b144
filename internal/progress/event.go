// Package progress defines the events emitted while a sweep runs and the
// sink they are delivered to. The fetch pipeline stays decoupled from any
// concrete logging backend by only ever talking to a Sink.
package progress

import (
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageFetchStart Stage = "FETCH_START"
	StageFetchRetry Stage = "FETCH_RETRY"
	StageFetchDone  Stage = "FETCH_DONE"
	StagePageDone   Stage = "PAGE_DONE"
	StageSourceDone Stage = "SOURCE_DONE"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// Supported HTTP status classes tracked for fetch completions.
const (
	Status2xx   StatusClass = "2xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusOther StatusClass = "other"
)

// Classify maps an HTTP status code to its class. Zero (no response at all)
// maps to StatusOther.
func Classify(code int) StatusClass {
	switch {
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusOther
	}
}

// Event captures a single milestone of a sweep.
type Event struct {
	// RunID identifies the sweep this event belongs to.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Endpoint is the API path the event relates to.
	Endpoint string
	// Attempt is the 1-based fetch attempt, set on fetch stages.
	Attempt int
	// PageIndex and TotalPages scope page events.
	PageIndex  int
	TotalPages int
	// Records is the record count carried by page and source events.
	Records int
	// StatusClass groups the HTTP response for fetch completions.
	StatusClass StatusClass
	// Note carries low-volume context, typically error text.
	Note string
}
