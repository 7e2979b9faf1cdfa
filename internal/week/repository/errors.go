package repository

import "errors"

var (
	ErrNotFound       = errors.New("week not found")
	ErrFailedToGet    = errors.New("failed to load week")
	ErrFailedToSave   = errors.New("failed to save week")
	ErrFailedToDelete = errors.New("failed to delete week")
)
