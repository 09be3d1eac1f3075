package common

import "time"

// Available reports whether the rentable has free capacity for the inclusive
// date range [pickUpDate, dropOffDate]. It must run inside a transaction: the
// unit row is locked for the transaction's duration so concurrent checks for
// the same unit serialize. Only bookings in "booked" state consume capacity;
// pending and failed rows do not count.
func Available(ops StoreOps, rentableID uint, pickUpDate, dropOffDate time.Time) (bool, error) {
	rentable, err := ops.LockRentable(rentableID)
	if err != nil {
		return false, err
	}
	if rentable.AvailableQuantity <= 0 {
		return false, nil
	}
	booked, err := ops.CountOverlappingBooked(rentableID, pickUpDate, dropOffDate)
	if err != nil {
		return false, err
	}
	return int64(rentable.AvailableQuantity)-booked > 0, nil
}
