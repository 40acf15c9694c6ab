package tram

import (
	"context"
	"errors"
	"fmt"

	"setram.dev/tram/model"
)

var (
	ErrIncompleteRoute = errors.New("departure and arrival must both be chosen")
	ErrSameStation     = errors.New("departure and arrival are the same station")
	ErrTravelTime      = errors.New("travel time unavailable")
)

type TravelTimer interface {
	TravelTime(ctx context.Context, departure model.Station, arrival model.Station) (*model.TravelTime, error)
}

// TravelFlow looks up travel times between two stations.
type TravelFlow struct {
	timer TravelTimer
}

func NewTravelFlow(timer TravelTimer) *TravelFlow {
	return &TravelFlow{timer: timer}
}

func (f *TravelFlow) Calculate(ctx context.Context, departure model.Station, arrival model.Station) (*model.TravelTime, error) {
	if departure == "" || arrival == "" {
		return nil, ErrIncompleteRoute
	}
	if departure == arrival {
		return nil, fmt.Errorf("%w: '%s'", ErrSameStation, departure)
	}

	tt, err := f.timer.TravelTime(ctx, departure, arrival)
	if err != nil {
		return nil, fmt.Errorf("%w: %s -> %s: %v", ErrTravelTime, departure, arrival, err)
	}

	if tt.Details == nil {
		tt.Details = []model.TravelStop{}
	}
	return tt, nil
}
