package postfx

type CompositorBuilderOption func(*compositorImpl)

// WithParams replaces the default effect parameters.
//
// Parameters:
//   - p: the parameters
//
// Returns:
//   - CompositorBuilderOption: option function to apply
func WithParams(p Params) CompositorBuilderOption {
	return func(c *compositorImpl) {
		c.params = p
	}
}

// WithDepthOfField turns the depth of field pass on or off.
//
// Parameters:
//   - enabled: whether the pass runs
//
// Returns:
//   - CompositorBuilderOption: option function to apply
func WithDepthOfField(enabled bool) CompositorBuilderOption {
	return func(c *compositorImpl) {
		c.params.DepthOfFieldEnabled = enabled
	}
}

// WithSmoothing sets the exponential rate of the phase-driven parameters.
// Non-positive values are ignored.
//
// Parameters:
//   - k: rate per second
//
// Returns:
//   - CompositorBuilderOption: option function to apply
func WithSmoothing(k float64) CompositorBuilderOption {
	return func(c *compositorImpl) {
		if k > 0 {
			c.smoothing = k
		}
	}
}
