package schedule

import "errors"

var (
	// ErrUnknownChannel is returned when generation is requested for a
	// channel id that is not in the configured lineup
	ErrUnknownChannel = errors.New("channel not found in configuration")

	// ErrNoContent is returned when a channel has no content catalog at all,
	// so not even a degraded (short) day can be generated
	ErrNoContent = errors.New("no content available for channel")
)

// IsUnknownChannel checks if the error is an unknown channel error
func IsUnknownChannel(err error) bool {
	return errors.Is(err, ErrUnknownChannel)
}
