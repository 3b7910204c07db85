package activity

import "errors"

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrProfileNotFound  = errors.New("profile not found")
)
