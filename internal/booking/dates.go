package booking

import (
	"time"

	"innkeep/internal/models"
)

// SelectableCheckIn reports whether date can be offered as a check-in
// day: it must not be booked and not lie before today.
func SelectableCheckIn(date, today time.Time, booked []time.Time) bool {
	day := models.Day(date)
	if day.Before(models.Day(today)) {
		return false
	}
	return !containsDay(booked, day)
}

// SelectableCheckOut reports whether date can be offered as a
// check-out day for a stay starting at checkIn: it must not be booked
// and must fall strictly after the chosen check-in.
func SelectableCheckOut(date, checkIn time.Time, booked []time.Time) bool {
	day := models.Day(date)
	if !day.After(models.Day(checkIn)) {
		return false
	}
	return !containsDay(booked, day)
}

func containsDay(dates []time.Time, day time.Time) bool {
	for _, d := range dates {
		if models.Day(d).Equal(day) {
			return true
		}
	}
	return false
}
