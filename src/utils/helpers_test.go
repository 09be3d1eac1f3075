package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(day int) time.Time {
	return time.Date(2026, time.September, day, 0, 0, 0, 0, time.UTC)
}

func TestParseRentalDate(t *testing.T) {
	parsed, err := ParseRentalDate("2026-09-10")
	assert.Nil(t, err)
	assert.Equal(t, date(10), parsed)

	_, err = ParseRentalDate("10-09-2026")
	assert.NotNil(t, err)
	_, err = ParseRentalDate("2026-09-10T00:00:00Z")
	assert.NotNil(t, err)
}

func TestRentalDays(t *testing.T) {
	assert.Equal(t, 1, RentalDays(date(10), date(10)))
	assert.Equal(t, 3, RentalDays(date(10), date(12)))
	assert.Equal(t, 1, RentalDays(date(12), date(10)))
}

func TestDeriveTotalPrice(t *testing.T) {
	assert.Equal(t, 300.0, DeriveTotalPrice(100, date(10), date(12)))
	assert.Equal(t, 45.0, DeriveTotalPrice(45, date(10), date(10)))
}
