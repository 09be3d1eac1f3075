package models

import (
	"crs/src/types"
	"time"
)

type Booking struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	RentableID      uint                `json:"rentable_id,omitempty"`
	UserID          uint                `json:"user_id,omitempty"`
	PickUpDate      time.Time           `gorm:"type:date" json:"pick_up_date"`
	PickUpTime      string              `json:"pick_up_time,omitempty"`
	DropOffDate     time.Time           `gorm:"type:date" json:"drop_off_date"`
	DropOffTime     string              `json:"drop_off_time,omitempty"`
	PickUpLocation  string              `json:"pick_up_location,omitempty"`
	DropOffLocation string              `json:"drop_off_location,omitempty"`
	Address         string              `json:"address,omitempty"`
	PhoneNumber     string              `json:"phone_number,omitempty"`
	TotalPrice      float64             `json:"total_price"`
	Status          types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	OrderID         string              `gorm:"index" json:"order_id,omitempty"`
	DeliveryDate    *time.Time          `gorm:"type:date" json:"delivery_date,omitempty"`

	Rentable *Rentable `gorm:"foreignKey:rentable_id" json:"rentable,omitempty"`
	User     *User     `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
