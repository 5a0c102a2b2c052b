package core

import "errors"

// Error kinds surfaced by the transform library, the session and the image loader.
// Callers match them with errors.Is; every returned error wraps exactly one kind.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidImage     = errors.New("invalid image")
	ErrNoImageLoaded    = errors.New("no image loaded")
	ErrNoProcessedImage = errors.New("no processed image")
	ErrIO               = errors.New("image i/o error")
)

// IsWarning reports whether err is an expected user-flow condition that the
// controller should present as a notice instead of a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrNoImageLoaded) || errors.Is(err, ErrNoProcessedImage)
}
