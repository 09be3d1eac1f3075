package utils

import (
	"crs/src/config"
	"crs/src/db"
	"crs/src/models"
	"crs/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

// ParseRentalDate parses a calendar date from a request body. Times of day
// travel separately as plain strings.
func ParseRentalDate(value string) (time.Time, error) {
	date, err := time.Parse(config.DATE_PARSE_FORMAT, value)
	if err != nil {
		log.Printf("Error parsing rental date [%s]: %s\n", value, err.Error())
		return time.Time{}, err
	}
	return date, nil
}

// RentalDays counts the days a booking occupies a unit. Both endpoints are
// occupied, so a same-day rental is one day.
func RentalDays(pickUpDate, dropOffDate time.Time) int {
	days := int(dropOffDate.Sub(pickUpDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// DeriveTotalPrice computes the charge from the stored rate. Clients never
// send a price.
func DeriveTotalPrice(pricePerDay float64, pickUpDate, dropOffDate time.Time) float64 {
	return pricePerDay * float64(RentalDays(pickUpDate, dropOffDate))
}

func GetOwnBookings(userId uint) ([]models.Booking, error) {
	db := db.GetDb()
	bookings := make([]models.Booking, 0)
	if err := db.
		Model(&models.Booking{}).
		Preload("Rentable.Car.Manufacturer").
		Where(&models.Booking{UserID: userId}).
		Order("created_at DESC").
		Find(&bookings).
		Error; err != nil {
		log.Printf("Error retrieving bookings for user [%d]: %s\n", userId, err.Error())
		return nil, err
	}
	return bookings, nil
}

// QueryBookings lists bookings for the admin surface, narrowed by the
// enumerated filters.
func QueryBookings(filters *types.BookingQueryFilters) ([]models.Booking, error) {
	db := db.GetDb()
	tx := db.
		Model(&models.Booking{}).
		Preload("Rentable.Car.Manufacturer").
		Preload("User")
	tx = applyBookingFilters(tx, filters)
	bookings := make([]models.Booking, 0)
	if err := tx.Order("created_at DESC").Find(&bookings).Error; err != nil {
		log.Printf("Error querying bookings: %s\n", err.Error())
		return nil, err
	}
	return bookings, nil
}

func applyBookingFilters(tx *gorm.DB, filters *types.BookingQueryFilters) *gorm.DB {
	if filters == nil {
		return tx
	}
	if filters.Status != "" {
		tx = tx.Where("status = ?", filters.Status)
	}
	if filters.UserID > 0 {
		tx = tx.Where("user_id = ?", filters.UserID)
	}
	if filters.RentableID > 0 {
		tx = tx.Where("rentable_id = ?", filters.RentableID)
	}
	if filters.PickUpAfter != "" {
		if date, err := ParseRentalDate(filters.PickUpAfter); err == nil {
			tx = tx.Where("pick_up_date >= ?", date)
		}
	}
	if filters.PickUpBefore != "" {
		if date, err := ParseRentalDate(filters.PickUpBefore); err == nil {
			tx = tx.Where("pick_up_date <= ?", date)
		}
	}
	if filters.CreatedAfter != "" {
		if date, err := ParseRentalDate(filters.CreatedAfter); err == nil {
			tx = tx.Where("created_at >= ?", date)
		}
	}
	if filters.CreatedBefore != "" {
		if date, err := ParseRentalDate(filters.CreatedBefore); err == nil {
			tx = tx.Where("created_at <= ?", date)
		}
	}
	return tx
}
