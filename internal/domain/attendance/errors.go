package attendance

import "errors"

var (
	ErrOfficeCancelled = errors.New("office is cancelled")
	ErrNoRoster        = errors.New("office has no employees")
)
