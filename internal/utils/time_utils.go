package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateClockTime checks that a value looks like "HH:MM" on a 24h clock.
// Scheduled-time settings from the admin console pass through here before
// being persisted.
func ValidateClockTime(value string) error {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid time format %q, expected HH:MM", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid minute in %q", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("time %q out of range", value)
	}

	return nil
}
