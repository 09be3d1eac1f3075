package common

import (
	"context"
	"crs/src/models"
	"crs/src/types"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence capability the booking core runs on. Atomic runs fn
// inside one database transaction; every op fn performs sees the transaction's
// row locks until commit or rollback.
type Store interface {
	Atomic(ctx context.Context, fn func(ops StoreOps) error) error
}

// StoreOps are the operations available inside a transaction. LockRentable
// takes the unit's row lock ("FOR UPDATE"), serializing concurrent availability
// checks for the same unit; callers for different units never block each other.
type StoreOps interface {
	LockRentable(id uint) (*models.Rentable, error)
	CountOverlappingBooked(rentableID uint, pickUpDate, dropOffDate time.Time) (int64, error)
	CreateBooking(booking *models.Booking) error
	FindBookingByOrderID(orderID string) (*models.Booking, error)
	UpdateBookingStatus(orderID string, from, to types.BookingStatus) (int64, error)
	ExpirePendingBefore(cutoff time.Time) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Atomic(ctx context.Context, fn func(ops StoreOps) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStoreOps{tx: tx})
	})
}

type gormStoreOps struct {
	tx *gorm.DB
}

func (o *gormStoreOps) LockRentable(id uint) (*models.Rentable, error) {
	var rentable models.Rentable
	if err := o.tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: clause.CurrentTable},
		}).
		Where(&models.Rentable{ID: id}).
		First(&rentable).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRentableNotFound
		}
		return nil, fmt.Errorf("locking rentable [%d]: %w", id, err)
	}
	return &rentable, nil
}

// The overlap test is inclusive on both boundary dates and ignores time-of-day:
// an existing booking whose drop-off equals the requested pick-up still counts.
func (o *gormStoreOps) CountOverlappingBooked(rentableID uint, pickUpDate, dropOffDate time.Time) (int64, error) {
	var count int64
	err := o.tx.
		Model(&models.Booking{}).
		Where("rentable_id = ? AND status = ?", rentableID, types.BOOKING_BOOKED).
		Where(
			o.tx.
				Where("pick_up_date BETWEEN ? AND ?", pickUpDate, dropOffDate).
				Or("drop_off_date BETWEEN ? AND ?", pickUpDate, dropOffDate).
				Or("pick_up_date <= ? AND drop_off_date >= ?", pickUpDate, dropOffDate),
		).
		Count(&count).
		Error
	if err != nil {
		return 0, fmt.Errorf("counting booked overlaps for rentable [%d]: %w", rentableID, err)
	}
	return count, nil
}

func (o *gormStoreOps) CreateBooking(booking *models.Booking) error {
	if err := o.tx.Create(booking).Error; err != nil {
		return fmt.Errorf("creating booking for rentable [%d]: %w", booking.RentableID, err)
	}
	return nil
}

func (o *gormStoreOps) FindBookingByOrderID(orderID string) (*models.Booking, error) {
	var booking models.Booking
	if err := o.tx.
		Where(&models.Booking{OrderID: orderID}).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("finding booking for order [%s]: %w", orderID, err)
	}
	return &booking, nil
}

// UpdateBookingStatus is guarded by the current status so a terminal booking
// can never transition again; the returned count is 0 when the guard missed.
func (o *gormStoreOps) UpdateBookingStatus(orderID string, from, to types.BookingStatus) (int64, error) {
	res := o.tx.
		Model(&models.Booking{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return 0, fmt.Errorf("updating booking status for order [%s]: %w", orderID, res.Error)
	}
	return res.RowsAffected, nil
}

func (o *gormStoreOps) ExpirePendingBefore(cutoff time.Time) (int64, error) {
	res := o.tx.
		Model(&models.Booking{}).
		Where("status = ? AND created_at <= ?", types.BOOKING_PENDING, cutoff).
		Update("status", types.BOOKING_FAILED)
	if res.Error != nil {
		return 0, fmt.Errorf("expiring pending bookings before %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
