package models

import "errors"

var (
	ErrConfiguration      = errors.New("missing or invalid configuration")
	ErrValidation         = errors.New("invalid input")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTransientStore     = errors.New("store temporarily unavailable")
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrVersionConflict    = errors.New("order was modified concurrently")
	ErrOrderIDExhausted   = errors.New("could not generate a unique order code")
	ErrInvalidCredentials = errors.New("invalid login or password")
)
