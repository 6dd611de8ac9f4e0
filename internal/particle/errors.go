package particle

import "errors"

var (
	// ErrNoSurface indicates the viewport size is unknown or a drawing
	// surface could not be acquired. No frame is scheduled.
	ErrNoSurface = errors.New("particle: drawing surface unavailable")

	// ErrStopped indicates an operation on a system with no active run.
	ErrStopped = errors.New("particle: system stopped")

	// ErrInvalidParams indicates a physics constant that is not finite or
	// lies outside its range. No run is started.
	ErrInvalidParams = errors.New("particle: invalid params")
)
