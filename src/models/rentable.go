package models

import "crs/src/types"

// Rentable is one bookable inventory line: a car plus its daily price and
// fleet size. AvailableQuantity is the total number of physical units, not a
// live counter of what is free; the free count is derived from bookings at
// query time.
type Rentable struct {
	ID                uint    `gorm:"primarykey" json:"id"`
	CarID             uint    `json:"car_id"`
	PricePerDay       float64 `json:"price_per_day"`
	AvailableQuantity int     `json:"available_quantity"`

	Car      *Car      `gorm:"foreignKey:car_id" json:"car,omitempty"`
	Bookings []Booking `gorm:"foreignKey:rentable_id" json:"bookings,omitempty"`

	types.Timestamps
}
