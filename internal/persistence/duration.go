package persistence

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxElapsedHours is the largest whole hour count a time.Duration holds.
const maxElapsedHours = int64(math.MaxInt64 / int64(time.Hour))

// FormatElapsed renders d as hh:mm:ss.fff. Hours are not wrapped into days
// and sub-millisecond precision is dropped.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// ParseElapsed reads [d.]hh:mm:ss[.fffffff]. The day prefix and up to nine
// fractional digits are accepted so records written with a tick-precision
// time span still load.
func ParseElapsed(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("elapsed time %q: want hh:mm:ss", s)
	}

	var days, hours int64
	var err error
	if dayPart, hourPart, ok := strings.Cut(parts[0], "."); ok {
		if days, err = parseUint(dayPart); err != nil {
			return 0, fmt.Errorf("elapsed time %q: days: %w", s, err)
		}
		if hours, err = parseUint(hourPart); err != nil {
			return 0, fmt.Errorf("elapsed time %q: hours: %w", s, err)
		}
	} else if hours, err = parseUint(parts[0]); err != nil {
		return 0, fmt.Errorf("elapsed time %q: hours: %w", s, err)
	}

	minutes, err := parseUint(parts[1])
	if err != nil || minutes > 59 {
		return 0, fmt.Errorf("elapsed time %q: invalid minutes", s)
	}

	secPart, fracPart, hasFrac := strings.Cut(parts[2], ".")
	seconds, err := parseUint(secPart)
	if err != nil || seconds > 59 {
		return 0, fmt.Errorf("elapsed time %q: invalid seconds", s)
	}

	var frac time.Duration
	if hasFrac {
		if len(fracPart) == 0 || len(fracPart) > 9 {
			return 0, fmt.Errorf("elapsed time %q: invalid fraction", s)
		}
		n, err := parseUint(fracPart)
		if err != nil {
			return 0, fmt.Errorf("elapsed time %q: fraction: %w", s, err)
		}
		for range 9 - len(fracPart) {
			n *= 10
		}
		frac = time.Duration(n)
	}

	if days > maxElapsedHours/24 || days*24+hours > maxElapsedHours {
		return 0, fmt.Errorf("elapsed time %q: out of range", s)
	}
	rest := time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second + frac
	whole := time.Duration(days*24+hours) * time.Hour
	if whole > math.MaxInt64-rest {
		return 0, fmt.Errorf("elapsed time %q: out of range", s)
	}
	return whole + rest, nil
}

// parseUint accepts only ASCII digits.
func parseUint(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid digit %q", r)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}
