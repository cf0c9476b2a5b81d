package models

import (
	"math"
	"time"
)

// Nights returns the number of nights between check-in and check-out:
// the absolute difference in days, rounded up. A missing date on
// either side yields 0 so callers can display "0 nights" instead of
// failing mid-form.
func Nights(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	diff := checkOut.Sub(checkIn)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// Cost is the stay total: nightly rate times nights.
func Cost(ratePerNight int64, nights int) int64 {
	if nights <= 0 {
		return 0
	}
	return ratePerNight * int64(nights)
}

// Day truncates t to its calendar date in UTC. All availability math
// operates on Day-normalized times.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
