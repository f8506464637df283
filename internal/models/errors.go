package models

import "errors"

var (
	// ErrOrderNotFound is returned when no order matches a lookup
	ErrOrderNotFound = errors.New("order not found")
	// ErrTokenConflict is returned when a generated token is already taken. Retrying is safe.
	ErrTokenConflict = errors.New("order token already in use")
	// ErrOrderNotEditable is returned when an order left the pending state before an edit landed
	ErrOrderNotEditable = errors.New("order can only be edited while pending")
)
