package model

import (
	"fmt"
	"strings"
	"time"
)

// Holds all external facing types and constants.

// A station's display name. Identity is exact string match against
// the line's known stations.
type Station string

// One of the two fixed traversal orders of the line.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Directions lists both directions in display order.
var Directions = []Direction{DirectionOutbound, DirectionInbound}

// Code is the route parameter the API expects for the direction.
func (d Direction) Code() string {
	switch d {
	case DirectionOutbound:
		return "v1"
	case DirectionInbound:
		return "v2"
	}
	return ""
}

func (d Direction) Label() string {
	switch d {
	case DirectionOutbound:
		return "L1: Gare Routière Sud → Les Cascades"
	case DirectionInbound:
		return "L2: Les Cascades → Gare Routière Sud"
	}
	return ""
}

func (d Direction) Valid() bool {
	return d == DirectionOutbound || d == DirectionInbound
}

// ParseDirection accepts a direction name ("outbound", "inbound") or
// its API code ("v1", "v2").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outbound", "v1":
		return DirectionOutbound, nil
	case "inbound", "v2":
		return DirectionInbound, nil
	}
	return "", fmt.Errorf("unknown direction '%s'", s)
}

// The (station, direction) pair driving what is fetched and
// displayed. Either half may be blank.
type Selection struct {
	Station   Station
	Direction Direction
}

// Complete reports whether both halves are present. Fetches are only
// valid for complete selections.
func (s Selection) Complete() bool {
	return s.Station != "" && s.Direction != ""
}

func (s Selection) String() string {
	return fmt.Sprintf("%s/%s", s.Station, s.Direction)
}

// A scheduled or delay adjusted arrival, as time of day "HH:MM".
type Arrival struct {
	Time string
}

// Arrivals for one selection, as returned by the API.
type Snapshot struct {
	Selection Selection
	Route     string
	Arrivals  []Arrival
	FetchedAt time.Time
}

// Minutes left until an arrival. Derived on every tick, never stored.
type Remaining struct {
	Time    string
	Minutes int
}

// Arrival returned by a delay mutation, with remaining time as
// computed by the server.
type DelayArrival struct {
	Ordinal   int
	Time      string
	Remaining int
}

type DelayResult struct {
	Success  bool
	Message  string
	Arrivals []DelayArrival
}

// One stop along a computed trip.
type TravelStop struct {
	Station string
	Time    string
}

type TravelTime struct {
	Minutes int
	Details []TravelStop
}

// Current network status, as shown on the status screen.
type Status struct {
	Statut    string
	ImagePath string
}
