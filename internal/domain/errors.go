package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrReschedulePending = errors.New("a reschedule is already in flight for this booking")
	ErrMissingBookingID  = errors.New("missing booking id")
	ErrMissingStart      = errors.New("missing start date")
	ErrEventNotFound     = errors.New("event not found")
	ErrNoSelection       = errors.New("no date range selected")
	ErrInvalidWindow     = errors.New("invalid visible window")
	ErrInvalidRange      = errors.New("end must be after start")
)
