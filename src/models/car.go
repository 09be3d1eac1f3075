package models

import (
	"crs/src/types"

	"github.com/google/uuid"
)

type Car struct {
	ID                  uint              `gorm:"primarykey" json:"id"`
	ManufacturerID      uuid.UUID         `gorm:"type:uuid" json:"manufacturer_id"`
	Name                string            `json:"name"`
	Type                string            `json:"type,omitempty"`
	Year                string            `json:"year,omitempty"`
	NumberOfSeats       uint              `json:"number_of_seats,omitempty"`
	FuelType            string            `json:"fuel_type,omitempty"`
	TransmissionType    string            `json:"transmission_type,omitempty"`
	Description         string            `gorm:"type:text" json:"description,omitempty"`
	PrimaryImageUrl     *string           `gorm:"size:1000" json:"primary_image_url,omitempty"`
	SecondaryImagesUrls types.StringArray `gorm:"type:jsonb" json:"secondary_images_urls,omitempty"`

	Manufacturer *Manufacturer `gorm:"foreignKey:manufacturer_id" json:"manufacturer,omitempty"`
	Rentable     *Rentable     `gorm:"foreignKey:car_id" json:"rentable,omitempty"`

	types.Timestamps
}
