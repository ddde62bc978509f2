// Package timefmt converts alarm times between the 12-hour display form and
// the 24-hour "HH:MM" form used on the wire.
package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTime = errors.New("invalid time")

// To24Hour turns "1:05 PM" into "13:05". Input without an AM/PM marker is
// assumed to be 24-hour already and returned unchanged.
func To24Hour(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTime)
	}

	clock, marker, hasMarker := strings.Cut(s, " ")
	if !hasMarker {
		upper := strings.ToUpper(s)
		if strings.HasSuffix(upper, "AM") || strings.HasSuffix(upper, "PM") {
			clock, marker, hasMarker = strings.TrimSpace(s[:len(s)-2]), s[len(s)-2:], true
		}
	}
	if !hasMarker {
		return s, nil
	}

	hourStr, minutes, ok := strings.Cut(clock, ":")
	if !ok {
		return "", fmt.Errorf("%w: %q has no colon", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return "", fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, s)
	}

	switch strings.ToUpper(strings.TrimSpace(marker)) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return "", fmt.Errorf("%w: unknown marker in %q", ErrInvalidTime, s)
	}

	return fmt.Sprintf("%02d:%s", hour, minutes), nil
}

// To12Hour renders "13:05" or "13:05:00" as "1:05 PM".
func To12Hour(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return "", fmt.Errorf("%w: bad minutes in %q", ErrInvalidTime, s)
	}

	marker := "AM"
	if hour >= 12 {
		marker = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, marker), nil
}
