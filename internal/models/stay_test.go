package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	t.Run("WholeDays", func(t *testing.T) {
		assert.Equal(t, 3, Nights(date(2024, 6, 1), date(2024, 6, 4)))
		assert.Equal(t, 1, Nights(date(2024, 6, 1), date(2024, 6, 2)))
	})

	t.Run("SameDay", func(t *testing.T) {
		assert.Equal(t, 0, Nights(date(2024, 6, 1), date(2024, 6, 1)))
	})

	t.Run("FractionalDaysRoundUp", func(t *testing.T) {
		in := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)
		out := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)
		assert.Equal(t, 2, Nights(in, out))
	})

	t.Run("SwappedDatesStayPositive", func(t *testing.T) {
		assert.Equal(t, 3, Nights(date(2024, 6, 4), date(2024, 6, 1)))
	})

	t.Run("MissingDateIsZero", func(t *testing.T) {
		assert.Equal(t, 0, Nights(time.Time{}, date(2024, 6, 4)))
		assert.Equal(t, 0, Nights(date(2024, 6, 1), time.Time{}))
		assert.Equal(t, 0, Nights(time.Time{}, time.Time{}))
	})
}

func TestCost(t *testing.T) {
	assert.Equal(t, int64(4500), Cost(1500, 3))
	assert.Equal(t, int64(0), Cost(1500, 0))
	assert.Equal(t, int64(0), Cost(1500, -1))
	assert.Equal(t, int64(0), Cost(0, 5))
}

func TestDay(t *testing.T) {
	ts := time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, date(2024, 6, 1), Day(ts))
}
