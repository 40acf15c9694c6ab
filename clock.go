package tram

import "time"

// Clock supplies the current wall-clock time.
type Clock func() time.Time

// Minutes samples the clock as minutes since local midnight, 0-1439.
func (c Clock) Minutes() int {
	return MinutesSinceMidnight(c())
}

func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
