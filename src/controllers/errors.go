package controllers

import (
	"errors"
	"fmt"

	"quickstay/src/lib"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrRoomUnavailable   = errors.New("room is not available")
	ErrInvalidDateRange  = errors.New("check-out date must be after check-in date")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrUpstreamFailure   = errors.New("upstream service failure")
	ErrSignatureInvalid  = lib.ErrSignatureInvalid
	ErrAlreadyRegistered = errors.New("hotel already registered")
	ErrBookingBusy       = errors.New("room is being booked by another request, try again")
)

var ErrNoHotel = fmt.Errorf("%w: no hotel found", ErrForbidden)
