package common

import (
	"context"
	"log"
	"time"
)

const (
	// SweepInterval is how often the sweeper looks for stale pending bookings.
	SweepInterval = time.Minute
	// PendingGraceWindow is how long an unconfirmed pending booking survives
	// before the sweeper reclaims it.
	PendingGraceWindow = 5 * time.Minute
)

// SweepExpiredBookings runs one sweep pass: every pending booking created
// before the grace window is flipped to failed in a single bulk update. The
// sweep is a best-effort garbage collector; a payment confirmed in the same
// instant can still win the status guard.
func SweepExpiredBookings(ctx context.Context, store Store, grace time.Duration) (int64, error) {
	var expired int64
	err := store.Atomic(ctx, func(ops StoreOps) error {
		count, err := ops.ExpirePendingBefore(time.Now().Add(-grace))
		if err != nil {
			return err
		}
		expired = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// BookingSweeperTask is the handler the scheduler runs every SweepInterval.
// Per-run errors are logged and retried on the next tick, never fatal.
func BookingSweeperTask(store Store) func() {
	return func() {
		expired, err := SweepExpiredBookings(context.Background(), store, PendingGraceWindow)
		if err != nil {
			log.Printf("Error in booking cleanup job: %s\n", err.Error())
			return
		}
		if expired > 0 {
			log.Printf("Booking cleanup: expired %d pending bookings\n", expired)
		}
	}
}
