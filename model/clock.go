package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedTime = errors.New("malformed time of day")

// ParseClock converts a time of day on the form "HH:MM" (or "H:MM",
// or "HH:MM:SS" with seconds ignored) into minutes since midnight.
func ParseClock(s string) (int, error) {
	split := strings.Split(s, ":")
	if len(split) != 2 && len(split) != 3 {
		return 0, fmt.Errorf("%w: found %d parts in '%s'", ErrMalformedTime, len(split), s)
	}

	hms := [3]int{}
	for i, str := range split {
		if len(str) == 0 || len(str) > 2 || (i > 0 && len(str) != 2) {
			return 0, fmt.Errorf("%w: bad field %d in '%s'", ErrMalformedTime, i, s)
		}
		j, err := strconv.Atoi(str)
		if err != nil || j < 0 {
			return 0, fmt.Errorf("%w: non-integer in '%s' pos %d", ErrMalformedTime, s, i)
		}
		hms[i] = j
	}

	if hms[0] > 23 {
		return 0, fmt.Errorf("%w: invalid hour in '%s'", ErrMalformedTime, s)
	}
	if hms[1] > 59 {
		return 0, fmt.Errorf("%w: invalid minute in '%s'", ErrMalformedTime, s)
	}
	if hms[2] > 59 {
		return 0, fmt.Errorf("%w: invalid second in '%s'", ErrMalformedTime, s)
	}

	return hms[0]*60 + hms[1], nil
}
