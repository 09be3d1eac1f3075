package common

import (
	"context"
	"crs/src/models"
	"crs/src/types"
	"fmt"
	"log"
	"math"
	"time"
)

// Gateway is the payment processor the coordinator opens orders against.
// CreateOrder amounts are in the gateway's minor unit. VerifySignature checks
// the HMAC proof the gateway hands the payer after a completed payment.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*types.PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type OpenReservationInput struct {
	RentableID      uint
	UserID          uint
	PickUpDate      time.Time
	DropOffDate     time.Time
	PickUpTime      string
	DropOffTime     string
	PickUpLocation  string
	DropOffLocation string
	Address         string
	PhoneNumber     string
	TotalPrice      float64
}

// ReservationCoordinator drives the two-phase booking protocol: Phase 1 opens
// a payment order and records a pending booking under the unit's row lock;
// Phase 2 verifies the payment proof, re-checks availability and promotes the
// booking to booked. The coordinator is the only writer of booking status
// transitions.
type ReservationCoordinator struct {
	store    Store
	gateway  Gateway
	currency string
}

func NewReservationCoordinator(store Store, gateway Gateway) *ReservationCoordinator {
	return &ReservationCoordinator{
		store:    store,
		gateway:  gateway,
		currency: "INR",
	}
}

// OpenReservation checks availability and opens a gateway order inside one
// transaction. A gateway failure rolls the whole transaction back so no
// half-written booking survives. On success the new booking is committed in
// pending state; it holds no capacity until Phase 2 promotes it, so two
// pending reservations for overlapping ranges can coexist until one confirms.
func (c *ReservationCoordinator) OpenReservation(ctx context.Context, input OpenReservationInput) (*types.PaymentOrder, error) {
	if input.DropOffDate.Before(input.PickUpDate) {
		return nil, ErrInvalidDateRange
	}
	if input.TotalPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	var order *types.PaymentOrder
	err := c.store.Atomic(ctx, func(ops StoreOps) error {
		free, err := Available(ops, input.RentableID, input.PickUpDate, input.DropOffDate)
		if err != nil {
			return err
		}
		if !free {
			return ErrNotAvailable
		}

		// The unit lock stays held across the gateway call so the order
		// creation and the booking write commit or roll back together. A slow
		// gateway stalls other bookings for this unit only.
		amount := toMinorUnits(input.TotalPrice)
		receipt := fmt.Sprintf("receipt_%d", time.Now().UnixNano())
		created, err := c.gateway.CreateOrder(ctx, amount, c.currency, receipt)
		if err != nil {
			log.Printf("Error creating payment order for rentable [%d]: %s\n", input.RentableID, err.Error())
			return fmt.Errorf("%w: %s", ErrGateway, err.Error())
		}

		booking := &models.Booking{
			RentableID:      input.RentableID,
			UserID:          input.UserID,
			PickUpDate:      input.PickUpDate,
			PickUpTime:      input.PickUpTime,
			DropOffDate:     input.DropOffDate,
			DropOffTime:     input.DropOffTime,
			PickUpLocation:  input.PickUpLocation,
			DropOffLocation: input.DropOffLocation,
			Address:         input.Address,
			PhoneNumber:     input.PhoneNumber,
			TotalPrice:      input.TotalPrice,
			Status:          types.BOOKING_PENDING,
			OrderID:         created.OrderID,
		}
		if err := ops.CreateBooking(booking); err != nil {
			return err
		}
		order = &types.PaymentOrder{
			OrderID:   created.OrderID,
			Amount:    created.Amount,
			Currency:  created.Currency,
			BookingID: booking.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmReservation verifies the payment proof, re-checks availability and
// flips the booking to booked. Confirming an already-booked order returns the
// stored booking without re-verifying or writing anything. A failed re-check
// leaves the booking pending; the sweeper reclaims it and the caller is
// expected to start a refund flow.
func (c *ReservationCoordinator) ConfirmReservation(ctx context.Context, proof types.PaymentProof) (*models.Booking, error) {
	var confirmed *models.Booking
	err := c.store.Atomic(ctx, func(ops StoreOps) error {
		booking, err := ops.FindBookingByOrderID(proof.OrderID)
		if err != nil {
			return err
		}
		switch booking.Status {
		case types.BOOKING_BOOKED:
			confirmed = booking
			return nil
		case types.BOOKING_FAILED:
			return ErrBookingExpired
		}

		if !c.gateway.VerifySignature(proof.OrderID, proof.PaymentID, proof.Signature) {
			return ErrPaymentVerification
		}

		free, err := Available(ops, booking.RentableID, booking.PickUpDate, booking.DropOffDate)
		if err != nil {
			return err
		}
		if !free {
			// Lost the race to a concurrent confirmer. Left pending on purpose.
			return ErrNoLongerAvailable
		}

		updated, err := ops.UpdateBookingStatus(proof.OrderID, types.BOOKING_PENDING, types.BOOKING_BOOKED)
		if err != nil {
			return err
		}
		if updated == 0 {
			return ErrBookingExpired
		}
		booking.Status = types.BOOKING_BOOKED
		confirmed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
