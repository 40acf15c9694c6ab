package tram

import (
	"fmt"

	"setram.dev/tram/model"
)

// Computes minutes left until each arrival, given the current time as
// minutes since midnight. Output has the same order and length as
// arrivals.
//
// Arrivals at or before now yield 0, never a negative countdown. There
// is no wraparound at midnight: 00:10 seen at 23:50 counts as already
// arrived, not as 20 minutes into tomorrow.
//
// A single malformed time rejects the whole batch.
func RemainingTimes(arrivals []model.Arrival, now int) ([]model.Remaining, error) {
	remaining := make([]model.Remaining, 0, len(arrivals))

	for i, arrival := range arrivals {
		tramMinutes, err := model.ParseClock(arrival.Time)
		if err != nil {
			return nil, fmt.Errorf("arrival %d: %w", i, err)
		}

		left := tramMinutes - now
		if left < 0 {
			left = 0
		}

		remaining = append(remaining, model.Remaining{
			Time:    arrival.Time,
			Minutes: left,
		})
	}

	return remaining, nil
}
