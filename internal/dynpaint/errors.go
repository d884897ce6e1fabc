package dynpaint

import (
	"errors"
	"fmt"
)

var (
	ErrNotEnoughMemory    = errors.New("not enough free memory")
	ErrNoUVLayer          = errors.New("no UV data on canvas")
	ErrInvalidResolution  = errors.New("invalid resolution")
	ErrUnsupportedFormat  = errors.New("unsupported surface format")
	ErrNoFrames           = errors.New("no frames to bake")
	ErrCancelled          = errors.New("baking cancelled")
	ErrNoSurfaceData      = errors.New("surface has no data")
	ErrCanvasNotAvailable = errors.New("canvas mesh not available")
	ErrInvalidSettings    = errors.New("invalid settings")
)

// UserMessage formats err for display. Cancellation is reported as a normal stop.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return "Baking Cancelled!"
	default:
		return fmt.Sprintf("Bake Failed: %v", err)
	}
}
