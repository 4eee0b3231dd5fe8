// Package timeutil converts between hour/minute pairs, minute counts and
// "HH:MM" clock strings, and buckets a time of day into a coarse slot.
// Minutes since midnight is the canonical unit everywhere else in the module.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot is a coarse time-of-day bucket.
type Slot string

const (
	Morning   Slot = "morning"
	Afternoon Slot = "afternoon"
	Evening   Slot = "evening"
	Night     Slot = "night"
)

const MinutesPerDay = 24 * 60

// ToMinutes converts an hours+minutes duration into minutes.
func ToMinutes(hours, minutes int) int {
	return hours*60 + minutes
}

// SplitMinutes is the inverse of ToMinutes.
func SplitMinutes(total int) (hours, minutes int) {
	return total / 60, total % 60
}

// FormatClock renders minutes since midnight as "HH:MM". Values past midnight
// are not wrapped, so 25:10 stays visible to callers that check for overflow.
func FormatClock(total int) string {
	if total < 0 {
		total = 0
	}
	h, m := SplitMinutes(total)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// ParseClock parses "HH:MM" (or "H:MM") into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return ToMinutes(h, m), nil
}

// SlotAt buckets minutes since midnight: before 12:00 morning, before 17:00
// afternoon, before 21:00 evening, otherwise night.
func SlotAt(total int) Slot {
	switch {
	case total < 12*60:
		return Morning
	case total < 17*60:
		return Afternoon
	case total < 21*60:
		return Evening
	default:
		return Night
	}
}

// SlotOf buckets an "HH:MM" clock string.
func SlotOf(clock string) (Slot, error) {
	total, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return SlotAt(total), nil
}

// Valid reports whether s is one of the four slots.
func (s Slot) Valid() bool {
	switch s {
	case Morning, Afternoon, Evening, Night:
		return true
	}
	return false
}
