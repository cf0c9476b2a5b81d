package database

import "errors"

var (
	// ErrReservationNotFound is returned when a point lookup or a
	// checkout targets an id that is no longer in the active set.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrRoomUnavailable is returned when the requested stay overlaps
	// an existing reservation for the same room.
	ErrRoomUnavailable = errors.New("room is not available for the selected dates")

	// ErrPastDate is returned for check-in dates before today.
	ErrPastDate = errors.New("check-in date is in the past")

	// ErrInvalidStay is returned when the stay has no nights or the
	// check-out does not follow the check-in.
	ErrInvalidStay = errors.New("check-out must be after check-in")
)
