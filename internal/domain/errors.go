package domain

import "errors"

// ErrInvalidCoordinates reports coordinates outside [-90,90] latitude or
// [-180,180] longitude. It is returned before any provider work begins.
var ErrInvalidCoordinates = errors.New("invalid coordinates")
