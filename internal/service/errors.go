package service

import "errors"

// Domain errors surfaced to callers. AlreadyRegistered and Unauthorized
// are permanent; Busy is transient and safe to retry with backoff.
var (
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrUnauthorized      = errors.New("registration belongs to another user")
	ErrBusy              = errors.New("event is busy, retry")
)
