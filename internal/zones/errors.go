package zones

import "errors"

var (
	// ErrInvalidTimeFormat is returned for race times that are not MM:SS or HH:MM:SS.
	ErrInvalidTimeFormat = errors.New("invalid time format")
	// ErrUnknownZone is returned when a zone has not been calculated.
	ErrUnknownZone = errors.New("unknown zone")
	// ErrNoRaceData is returned when zones are requested with no stored results.
	ErrNoRaceData = errors.New("no race data")
)
