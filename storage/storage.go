package storage

import (
	"time"
)

// Journal of delay mutations applied by operators.
type Storage interface {
	// Writes a DelayRecord. If a record with the same ID exists,
	// it is replaced.
	WriteDelay(record *DelayRecord) error

	// Retrieves all records matching the filter, most recently
	// applied first.
	ListDelays(filter ListDelaysFilter) ([]*DelayRecord, error)

	Close() error
}

type ListDelaysFilter struct {
	// If set, only include records for the given station.
	Station string

	// If set, only include records applied at or after Since.
	Since time.Time

	// At most Limit records. Pass 0 for no limit.
	Limit int
}

// One attempt at applying a delay, with the API's answer.
type DelayRecord struct {
	ID        string
	Station   string
	Direction string
	Minutes   int
	Success   bool
	Message   string
	Arrivals  []DelayArrival
	AppliedAt time.Time
}

// Arrival as returned by the API after a delay was applied.
type DelayArrival struct {
	Time      string `json:"time"`
	Remaining int    `json:"remaining"`
}
