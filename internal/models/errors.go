package models

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrNoActiveEvent     = errors.New("no active event")
	ErrActiveEventExists = errors.New("an active event already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyPaid       = errors.New("customer has already paid")
)
