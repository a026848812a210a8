package broadcast

import "errors"

var (
	// ErrNoSchedule is returned when no grid is loaded for a channel, or the
	// loaded grid has no day covering the requested date. This is the
	// "not generated yet" signal, not a failure.
	ErrNoSchedule = errors.New("no schedule loaded for channel")

	// ErrOffAir is returned when the grid has a day for the requested date
	// but no entry covers the effective instant (the accepted gap at day's
	// end). Callers fall back to a static experience.
	ErrOffAir = errors.New("channel is off air")
)

// IsNoSchedule checks if the error is a missing schedule error
func IsNoSchedule(err error) bool {
	return errors.Is(err, ErrNoSchedule)
}

// IsOffAir checks if the error is an off-air error
func IsOffAir(err error) bool {
	return errors.Is(err, ErrOffAir)
}
