package models

import (
	"crs/src/types"

	"github.com/google/uuid"
)

type Manufacturer struct {
	ID   uuid.UUID `gorm:"type:uuid;primarykey;default:gen_random_uuid()" json:"id"`
	Name string    `gorm:"uniqueIndex" json:"name"`

	Cars []Car `gorm:"foreignKey:manufacturer_id" json:"cars,omitempty"`

	types.Timestamps
}
