package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyExists  = errors.New("already exists")
	ErrNoAvailability = errors.New("no availability")
	ErrUnplannable    = errors.New("unplannable")
	ErrIntegrity      = errors.New("integrity violation")
	ErrRunNotFound    = errors.New("run not found")
	ErrAuthExpired    = errors.New("provider credential expired")
)
