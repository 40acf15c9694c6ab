package tram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"setram.dev/tram/model"
	"setram.dev/tram/stations"
	"setram.dev/tram/storage"
)

const (
	MinDelay = 1
	MaxDelay = 15

	delayFailureMessage = "Une erreur est survenue. Veuillez réessayer."
)

var (
	ErrInvalidDelay = errors.New("delay out of range")
	ErrSubmitting   = errors.New("delay submission in progress")
)

// Applies delays to the line through the API.
type DelayApplier interface {
	ApplyDelay(ctx context.Context, station model.Station, direction model.Direction, minutes int) (*model.DelayResult, error)
}

// DelayOptions lists the delays, in minutes, an operator can pick.
func DelayOptions() []int {
	options := make([]int, 0, MaxDelay-MinDelay+1)
	for m := MinDelay; m <= MaxDelay; m++ {
		options = append(options, m)
	}
	return options
}

// DelayFlow submits delay applications, one at a time. It shares no
// state with the schedule engine.
type DelayFlow struct {
	// Every attempt is recorded here, if set.
	Journal storage.Storage

	NewID   func() string
	TimeNow func() time.Time

	applier DelayApplier
	network *stations.Network

	mutex      sync.Mutex
	submitting bool
}

func NewDelayFlow(applier DelayApplier, network *stations.Network) *DelayFlow {
	return &DelayFlow{
		NewID:   uuid.NewString,
		TimeNow: time.Now,
		applier: applier,
		network: network,
	}
}

// CanSubmit reports whether a delay can be applied at station right
// now.
func (f *DelayFlow) CanSubmit(station model.Station) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return station != "" && !f.submitting
}

// Apply delays the line by minutes at station, in direction.
//
// Rejections by the API are not errors: they are returned as a result
// with Success false and the API's message. Transport and decoding
// failures likewise yield a generic failure result. Errors are only
// returned for invalid input or when a submission is in flight.
func (f *DelayFlow) Apply(ctx context.Context, station model.Station, direction model.Direction, minutes int) (*model.DelayResult, error) {
	if station == "" {
		return nil, ErrNoStation
	}
	if f.network != nil && !f.network.Contains(station) {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownStation, station)
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidDirection, direction)
	}
	if minutes < MinDelay || minutes > MaxDelay {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDelay, minutes)
	}

	f.mutex.Lock()
	if f.submitting {
		f.mutex.Unlock()
		return nil, ErrSubmitting
	}
	f.submitting = true
	f.mutex.Unlock()

	defer func() {
		f.mutex.Lock()
		f.submitting = false
		f.mutex.Unlock()
	}()

	result, err := f.applier.ApplyDelay(ctx, station, direction, minutes)
	if err != nil {
		log.Printf("applying %d min delay at %s (%s): %v", minutes, station, direction, err)
		result = &model.DelayResult{Success: false, Message: delayFailureMessage}
	}
	if !result.Success {
		result.Arrivals = nil
	}

	f.record(station, direction, minutes, result)

	return result, nil
}

func (f *DelayFlow) record(station model.Station, direction model.Direction, minutes int, result *model.DelayResult) {
	if f.Journal == nil {
		return
	}

	arrivals := make([]storage.DelayArrival, 0, len(result.Arrivals))
	for _, a := range result.Arrivals {
		arrivals = append(arrivals, storage.DelayArrival{Time: a.Time, Remaining: a.Remaining})
	}

	err := f.Journal.WriteDelay(&storage.DelayRecord{
		ID:        f.NewID(),
		Station:   string(station),
		Direction: string(direction),
		Minutes:   minutes,
		Success:   result.Success,
		Message:   result.Message,
		Arrivals:  arrivals,
		AppliedAt: f.TimeNow(),
	})
	if err != nil {
		log.Printf("recording delay at %s: %v", station, err)
	}
}
