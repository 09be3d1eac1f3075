package common

import (
	"crs/src/models"
	"crs/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

func booked(rentableID uint, pickUp, dropOff int) *models.Booking {
	return &models.Booking{
		RentableID:  rentableID,
		Status:      types.BOOKING_BOOKED,
		PickUpDate:  day(pickUp),
		DropOffDate: day(dropOff),
	}
}

func TestAvailable(t *testing.T) {
	t.Run("returns an error for an unknown rentable", func(t *testing.T) {
		store := newFakeStore()
		_, err := Available(&fakeOps{s: store}, 1, day(10), day(12))
		assert.ErrorIs(t, err, ErrRentableNotFound)
	})

	t.Run("a zero fleet is never available", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 0})
		free, err := Available(&fakeOps{s: store}, 1, day(10), day(12))
		assert.Nil(t, err)
		assert.False(t, free)
	})

	t.Run("an empty calendar is available", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		free, err := Available(&fakeOps{s: store}, 1, day(10), day(12))
		assert.Nil(t, err)
		assert.True(t, free)
	})

	t.Run("pending and failed bookings do not consume capacity", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		pending := booked(1, 10, 12)
		pending.Status = types.BOOKING_PENDING
		failed := booked(1, 10, 12)
		failed.Status = types.BOOKING_FAILED
		store.bookings = append(store.bookings, pending, failed)

		free, err := Available(&fakeOps{s: store}, 1, day(10), day(12))
		assert.Nil(t, err)
		assert.True(t, free)
	})

	t.Run("single unit with days 10 to 12 booked", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		store.bookings = append(store.bookings, booked(1, 10, 12))
		ops := &fakeOps{s: store}

		cases := []struct {
			name             string
			pickUp, dropOff  int
			expectsAvailable bool
		}{
			{"identical range", 10, 12, false},
			{"overlap from the left", 8, 10, false},
			{"overlap from the right", 12, 14, false},
			{"contained range", 11, 11, false},
			{"spanning range", 8, 14, false},
			{"touching drop-off day", 12, 12, false},
			{"day after drop-off", 13, 15, true},
			{"day before pick-up", 8, 9, true},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				free, err := Available(ops, 1, day(tc.pickUp), day(tc.dropOff))
				assert.Nil(t, err)
				assert.Equal(t, tc.expectsAvailable, free)
			})
		}
	})

	t.Run("a second unit absorbs the overlap", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 2})
		store.bookings = append(store.bookings, booked(1, 10, 12))
		free, err := Available(&fakeOps{s: store}, 1, day(11), day(13))
		assert.Nil(t, err)
		assert.True(t, free)
	})

	t.Run("other rentables do not interfere", func(t *testing.T) {
		store := newFakeStore(
			&models.Rentable{ID: 1, AvailableQuantity: 1},
			&models.Rentable{ID: 2, AvailableQuantity: 1},
		)
		store.bookings = append(store.bookings, booked(2, 10, 12))
		free, err := Available(&fakeOps{s: store}, 1, day(10), day(12))
		assert.Nil(t, err)
		assert.True(t, free)
	})
}
