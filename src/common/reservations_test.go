package common

import (
	"context"
	"crs/src/models"
	"crs/src/types"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	mu        sync.Mutex
	rentables map[uint]*models.Rentable
	bookings  []*models.Booking
	nextID    uint
}

func newFakeStore(rentables ...*models.Rentable) *fakeStore {
	s := &fakeStore{rentables: map[uint]*models.Rentable{}}
	for _, r := range rentables {
		s.rentables[r.ID] = r
	}
	return s
}

// Atomic serializes callers on one mutex and restores the booking table when
// fn fails, standing in for a database transaction.
func (s *fakeStore) Atomic(ctx context.Context, fn func(ops StoreOps) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]*models.Booking, len(s.bookings))
	for i, b := range s.bookings {
		cp := *b
		snapshot[i] = &cp
	}
	nextID := s.nextID
	if err := fn(&fakeOps{s: s}); err != nil {
		s.bookings = snapshot
		s.nextID = nextID
		return err
	}
	return nil
}

type fakeOps struct {
	s *fakeStore
}

func (o *fakeOps) LockRentable(id uint) (*models.Rentable, error) {
	r, ok := o.s.rentables[id]
	if !ok {
		return nil, ErrRentableNotFound
	}
	cp := *r
	return &cp, nil
}

func (o *fakeOps) CountOverlappingBooked(rentableID uint, pickUpDate, dropOffDate time.Time) (int64, error) {
	var count int64
	for _, b := range o.s.bookings {
		if b.RentableID != rentableID || b.Status != types.BOOKING_BOOKED {
			continue
		}
		if b.DropOffDate.Before(pickUpDate) || b.PickUpDate.After(dropOffDate) {
			continue
		}
		count++
	}
	return count, nil
}

func (o *fakeOps) CreateBooking(booking *models.Booking) error {
	o.s.nextID++
	booking.ID = o.s.nextID
	booking.CreatedAt = time.Now()
	cp := *booking
	o.s.bookings = append(o.s.bookings, &cp)
	return nil
}

func (o *fakeOps) FindBookingByOrderID(orderID string) (*models.Booking, error) {
	for _, b := range o.s.bookings {
		if b.OrderID == orderID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (o *fakeOps) UpdateBookingStatus(orderID string, from, to types.BookingStatus) (int64, error) {
	var updated int64
	for _, b := range o.s.bookings {
		if b.OrderID == orderID && b.Status == from {
			b.Status = to
			updated++
		}
	}
	return updated, nil
}

func (o *fakeOps) ExpirePendingBefore(cutoff time.Time) (int64, error) {
	var expired int64
	for _, b := range o.s.bookings {
		if b.Status == types.BOOKING_PENDING && !b.CreatedAt.After(cutoff) {
			b.Status = types.BOOKING_FAILED
			expired++
		}
	}
	return expired, nil
}

func (s *fakeStore) findByOrderID(orderID string) *models.Booking {
	for _, b := range s.bookings {
		if b.OrderID == orderID {
			return b
		}
	}
	return nil
}

type fakeGateway struct {
	orders      int
	failCreate  bool
	rejectProof bool
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*types.PaymentOrder, error) {
	if g.failCreate {
		return nil, errors.New("gateway unreachable")
	}
	g.orders++
	return &types.PaymentOrder{
		OrderID:  fmt.Sprintf("order_%d", g.orders),
		Amount:   amount,
		Currency: currency,
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return !g.rejectProof
}

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func openInput(rentableID uint, pickUp, dropOff int) OpenReservationInput {
	return OpenReservationInput{
		RentableID:      rentableID,
		UserID:          1,
		PickUpDate:      day(pickUp),
		DropOffDate:     day(dropOff),
		PickUpTime:      "10:00",
		DropOffTime:     "18:00",
		PickUpLocation:  "Airport",
		DropOffLocation: "Downtown",
		Address:         "1 Main St",
		PhoneNumber:     "5550100",
		TotalPrice:      300,
	}
}

func proofFor(orderID string) types.PaymentProof {
	return types.PaymentProof{OrderID: orderID, PaymentID: "pay_1", Signature: "sig"}
}

func TestOpenReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending booking with a gateway order", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1, PricePerDay: 100})
		gateway := &fakeGateway{}
		c := NewReservationCoordinator(store, gateway)

		order, err := c.OpenReservation(ctx, openInput(1, 10, 12))
		assert.Nil(t, err)
		assert.Equal(t, "order_1", order.OrderID)
		assert.Equal(t, int64(30000), order.Amount)
		assert.Equal(t, "INR", order.Currency)
		assert.NotZero(t, order.BookingID)

		booking := store.findByOrderID(order.OrderID)
		assert.NotNil(t, booking)
		assert.Equal(t, types.BOOKING_PENDING, booking.Status)
	})

	t.Run("rejects an inverted date range", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})

		_, err := c.OpenReservation(ctx, openInput(1, 12, 10))
		assert.ErrorIs(t, err, ErrInvalidDateRange)
		assert.Empty(t, store.bookings)
	})

	t.Run("accepts a same-day rental", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})

		_, err := c.OpenReservation(ctx, openInput(1, 10, 10))
		assert.Nil(t, err)
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})

		input := openInput(1, 10, 12)
		input.TotalPrice = 0
		_, err := c.OpenReservation(ctx, input)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("refuses an unknown rentable", func(t *testing.T) {
		store := newFakeStore()
		c := NewReservationCoordinator(store, &fakeGateway{})

		_, err := c.OpenReservation(ctx, openInput(9, 10, 12))
		assert.ErrorIs(t, err, ErrRentableNotFound)
	})

	t.Run("refuses when every unit is booked for the range", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		store.bookings = append(store.bookings, &models.Booking{
			ID: 1, RentableID: 1, Status: types.BOOKING_BOOKED,
			PickUpDate: day(10), DropOffDate: day(12), OrderID: "order_prior",
		})
		c := NewReservationCoordinator(store, &fakeGateway{})

		_, err := c.OpenReservation(ctx, openInput(1, 11, 13))
		assert.ErrorIs(t, err, ErrNotAvailable)
	})

	t.Run("a gateway failure leaves no booking behind", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{failCreate: true})

		_, err := c.OpenReservation(ctx, openInput(1, 10, 12))
		assert.ErrorIs(t, err, ErrGateway)
		assert.Empty(t, store.bookings)
	})

	t.Run("pending bookings hold no capacity", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})

		_, err := c.OpenReservation(ctx, openInput(1, 10, 12))
		assert.Nil(t, err)
		_, err = c.OpenReservation(ctx, openInput(1, 10, 12))
		assert.Nil(t, err)
		assert.Len(t, store.bookings, 2)
	})
}

func TestConfirmReservation(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T, c *ReservationCoordinator, rentableID uint, pickUp, dropOff int) *types.PaymentOrder {
		t.Helper()
		order, err := c.OpenReservation(ctx, openInput(rentableID, pickUp, dropOff))
		assert.Nil(t, err)
		return order
	}

	t.Run("promotes a pending booking to booked", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})
		order := open(t, c, 1, 10, 12)

		booking, err := c.ConfirmReservation(ctx, proofFor(order.OrderID))
		assert.Nil(t, err)
		assert.Equal(t, types.BOOKING_BOOKED, booking.Status)
		assert.Equal(t, types.BOOKING_BOOKED, store.findByOrderID(order.OrderID).Status)
	})

	t.Run("confirming twice returns the stored booking", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		gateway := &fakeGateway{}
		c := NewReservationCoordinator(store, gateway)
		order := open(t, c, 1, 10, 12)

		first, err := c.ConfirmReservation(ctx, proofFor(order.OrderID))
		assert.Nil(t, err)

		// Even a proof that would no longer verify is accepted once booked.
		gateway.rejectProof = true
		second, err := c.ConfirmReservation(ctx, proofFor(order.OrderID))
		assert.Nil(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, types.BOOKING_BOOKED, second.Status)
	})

	t.Run("rejects an unknown order", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})

		_, err := c.ConfirmReservation(ctx, proofFor("order_missing"))
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("rejects a bad signature and stays pending", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		gateway := &fakeGateway{}
		c := NewReservationCoordinator(store, gateway)
		order := open(t, c, 1, 10, 12)

		gateway.rejectProof = true
		_, err := c.ConfirmReservation(ctx, proofFor(order.OrderID))
		assert.ErrorIs(t, err, ErrPaymentVerification)
		assert.Equal(t, types.BOOKING_PENDING, store.findByOrderID(order.OrderID).Status)
	})

	t.Run("rejects a swept booking", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})
		order := open(t, c, 1, 10, 12)
		store.findByOrderID(order.OrderID).Status = types.BOOKING_FAILED

		_, err := c.ConfirmReservation(ctx, proofFor(order.OrderID))
		assert.ErrorIs(t, err, ErrBookingExpired)
	})

	t.Run("the losing confirmer stays pending", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})
		first := open(t, c, 1, 10, 12)
		second := open(t, c, 1, 11, 13)

		_, err := c.ConfirmReservation(ctx, proofFor(first.OrderID))
		assert.Nil(t, err)

		_, err = c.ConfirmReservation(ctx, proofFor(second.OrderID))
		assert.ErrorIs(t, err, ErrNoLongerAvailable)
		assert.Equal(t, types.BOOKING_PENDING, store.findByOrderID(second.OrderID).Status)
	})

	t.Run("disjoint ranges confirm without contention", func(t *testing.T) {
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: 1})
		c := NewReservationCoordinator(store, &fakeGateway{})
		first := open(t, c, 1, 10, 12)
		second := open(t, c, 1, 13, 15)

		_, err := c.ConfirmReservation(ctx, proofFor(first.OrderID))
		assert.Nil(t, err)
		_, err = c.ConfirmReservation(ctx, proofFor(second.OrderID))
		assert.Nil(t, err)
	})

	t.Run("only fleet size confirmations win for one range", func(t *testing.T) {
		const fleet = 3
		store := newFakeStore(&models.Rentable{ID: 1, AvailableQuantity: fleet})
		c := NewReservationCoordinator(store, &fakeGateway{})

		orders := make([]*types.PaymentOrder, 0, fleet+1)
		for i := 0; i < fleet+1; i++ {
			orders = append(orders, open(t, c, 1, 10, 12))
		}

		var wins, losses int
		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, order := range orders {
			wg.Add(1)
			go func(orderID string) {
				defer wg.Done()
				_, err := c.ConfirmReservation(ctx, proofFor(orderID))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					wins++
				} else {
					assert.ErrorIs(t, err, ErrNoLongerAvailable)
					losses++
				}
			}(order.OrderID)
		}
		wg.Wait()

		assert.Equal(t, fleet, wins)
		assert.Equal(t, 1, losses)
	})
}
