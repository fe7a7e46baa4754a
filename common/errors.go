package common

import "errors"

// ErrContextLost reports that the graphics context is gone and cannot be used again this
// session. Render targets wrap it; the lifecycle treats it like a missing capability.
var ErrContextLost = errors.New("graphics context lost")
