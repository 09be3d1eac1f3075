package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING BookingStatus = "pending"
	BOOKING_BOOKED  BookingStatus = "booked"
	BOOKING_FAILED  BookingStatus = "failed"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateManufacturerRequestBody struct {
	Name string `json:"name" binding:"required"`
}

type CreateCarRequestBody struct {
	ManufacturerID   string `form:"manufacturer" binding:"required"`
	Name             string `form:"name" binding:"required"`
	Type             string `form:"type" binding:"required"`
	Year             string `form:"year" binding:"required"`
	NumberOfSeats    uint   `form:"number_of_seats" binding:"required"`
	FuelType         string `form:"fuel_type" binding:"required"`
	TransmissionType string `form:"transmission_type" binding:"required"`
	Description      string `form:"description" binding:"required"`
}

type UpdateCarRequestBody struct {
	Name             string `form:"name,omitempty"`
	Type             string `form:"type,omitempty"`
	Year             string `form:"year,omitempty"`
	NumberOfSeats    uint   `form:"number_of_seats,omitempty"`
	FuelType         string `form:"fuel_type,omitempty"`
	TransmissionType string `form:"transmission_type,omitempty"`
	Description      string `form:"description,omitempty"`
}

type CreateRentableRequestBody struct {
	CarID             uint    `json:"car" binding:"required"`
	PricePerDay       float64 `json:"price_per_day" binding:"required,gt=0"`
	AvailableQuantity uint    `json:"available_quantity"`
}

type UpdateRentableRequestBody struct {
	PricePerDay       *float64 `json:"price_per_day,omitempty" binding:"omitempty,gt=0"`
	AvailableQuantity *uint    `json:"available_quantity,omitempty"`
}

type CreateBookingOrderRequestBody struct {
	RentableID      uint   `json:"rentable_id" binding:"required"`
	PickUpDate      string `json:"pick_up_date" binding:"required,rentaldate" time_format:"2006-01-02"`
	DropOffDate     string `json:"drop_off_date" binding:"required,rentaldate,gtdate=PickUpDate" time_format:"2006-01-02"`
	PickUpTime      string `json:"pick_up_time" binding:"required"`
	DropOffTime     string `json:"drop_off_time" binding:"required"`
	PickUpLocation  string `json:"pick_up_location" binding:"required"`
	DropOffLocation string `json:"drop_off_location" binding:"required"`
	Address         string `json:"address" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
}

type UpdateDeliveryRequestBody struct {
	DeliveryDate string `json:"delivery_date" binding:"required"`
}

type VerifyPaymentRequestBody struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type AvailableCarsQuery struct {
	PickUpDate       string   `form:"pick_up_date" binding:"required"`
	DropOffDate      string   `form:"drop_off_date" binding:"required"`
	Query            string   `form:"query"`
	TransmissionType []string `form:"transmission_type"`
	FuelType         []string `form:"fuel_type"`
	NumberOfSeats    []uint   `form:"number_of_seats"`
	MaxPrice         float64  `form:"max_price"`
	PriceSort        string   `form:"price_sort" binding:"omitempty,oneof=asc desc"`
}

// BookingQueryFilters is the admin-side query specification. Every filter is an
// enumerated optional field; zero values mean "not filtered".
type BookingQueryFilters struct {
	Status        BookingStatus `form:"status" binding:"omitempty,oneof=pending booked failed"`
	UserID        uint          `form:"user"`
	RentableID    uint          `form:"rentable"`
	PickUpAfter   string        `form:"pick_up_after"`
	PickUpBefore  string        `form:"pick_up_before"`
	CreatedAfter  string        `form:"created_after"`
	CreatedBefore string        `form:"created_before"`
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"required"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PaymentOrder is the gateway's view of an opened order. Amount is in the
// gateway's minor unit (paise).
type PaymentOrder struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	BookingID uint   `json:"booking_id,omitempty"`
}

type PaymentProof struct {
	OrderID   string
	PaymentID string
	Signature string
}
