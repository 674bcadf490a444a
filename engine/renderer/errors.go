package renderer

import "errors"

var (
	// ErrBackendUnavailable is returned by Configure when no GPU adapter or device can be acquired.
	ErrBackendUnavailable = errors.New("render backend unavailable")

	// ErrInvalidState is returned when an operation is called in a lifecycle state that does not allow it.
	ErrInvalidState = errors.New("invalid renderer state")

	// ErrPropertyOverflow is returned when more property values are written than an entity was created with.
	ErrPropertyOverflow = errors.New("property count exceeds entity capacity")

	// ErrInstanceOutOfRange is returned when an instance index is outside the entity's instance count.
	ErrInstanceOutOfRange = errors.New("instance index out of range")
)
