package model

import "errors"

// Common errors used across the application
var (
	ErrProfileNotFound = errors.New("profile not found")
)
