package tram

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setram.dev/tram/model"
)

type fakeTimer struct {
	calls  int
	result *model.TravelTime
	err    error
}

func (f *fakeTimer) TravelTime(ctx context.Context, departure model.Station, arrival model.Station) (*model.TravelTime, error) {
	f.calls++
	return f.result, f.err
}

func TestTravelCalculate(t *testing.T) {
	timer := &fakeTimer{result: &model.TravelTime{Minutes: 12}}
	flow := NewTravelFlow(timer)

	tt, err := flow.Calculate(context.Background(), "Jardin Public", "La Radio")
	require.NoError(t, err)
	assert.Equal(t, 12, tt.Minutes)
	assert.Equal(t, []model.TravelStop{}, tt.Details)
	assert.Equal(t, 1, timer.calls)
}

func TestTravelCalculateInvalid(t *testing.T) {
	timer := &fakeTimer{result: &model.TravelTime{Minutes: 12}}
	flow := NewTravelFlow(timer)
	ctx := context.Background()

	_, err := flow.Calculate(ctx, "", "La Radio")
	assert.ErrorIs(t, err, ErrIncompleteRoute)
	_, err = flow.Calculate(ctx, "La Radio", "")
	assert.ErrorIs(t, err, ErrIncompleteRoute)
	_, err = flow.Calculate(ctx, "La Radio", "La Radio")
	assert.ErrorIs(t, err, ErrSameStation)

	assert.Equal(t, 0, timer.calls)
}

func TestTravelCalculateFailure(t *testing.T) {
	cause := errors.New("connection refused")
	flow := NewTravelFlow(&fakeTimer{err: cause})

	_, err := flow.Calculate(context.Background(), "Jardin Public", "La Radio")
	assert.ErrorIs(t, err, ErrTravelTime)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t,
		"Impossible de récupérer le temps de trajet. Vérifiez votre connexion et réessayez.",
		Message(err),
	)
}
