package common

import "errors"

var (
	ErrRentableNotFound = errors.New("rentable car not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrBookingExpired   = errors.New("booking has already expired")

	ErrInvalidDateRange = errors.New("drop-off date is before pick-up date")
	ErrInvalidPrice     = errors.New("total price must be greater than zero")

	// ErrNotAvailable is the Phase 1 refusal: no free unit for the requested dates.
	ErrNotAvailable = errors.New("the car is not available for the selected dates")

	// ErrNoLongerAvailable is the Phase 2 refusal: the re-check after payment lost to
	// a concurrent confirmation. The booking stays pending for the sweeper.
	ErrNoLongerAvailable = errors.New("car is no longer available for the selected dates")

	ErrPaymentVerification = errors.New("payment verification failed")
	ErrGateway             = errors.New("payment gateway request failed")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRentableNotFound) || errors.Is(err, ErrBookingNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) || errors.Is(err, ErrInvalidPrice)
}

func IsAvailabilityError(err error) bool {
	return errors.Is(err, ErrNotAvailable) || errors.Is(err, ErrNoLongerAvailable)
}
