package models

import "crs/src/types"

type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string `json:"-"`
	Phone    string `json:"phone,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Role     string `gorm:"default:'user'" json:"role,omitempty"`

	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
