package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSessionBusy     = errors.New("another turn is in flight for this session")
	ErrRateLimited     = errors.New("too many messages, slow down")
	ErrDispatchFailed  = errors.New("notification dispatch failed")
	ErrStateCorrupted  = errors.New("conversation state corrupted")
)
