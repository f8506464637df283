package order

import (
	"errors"

	"smart-menu/internal/models"
)

var (
	ErrNotFound          = models.ErrOrderNotFound
	ErrTokenConflict     = models.ErrTokenConflict
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotEditable       = models.ErrOrderNotEditable
	ErrInvalidStatus     = errors.New("unknown status")
)
