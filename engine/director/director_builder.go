package director

type DirectorBuilderOption func(*directorImpl)

// WithKeyframes replaces the camera path. An empty path is ignored.
//
// Parameters:
//   - keyframes: the ordered way-points
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithKeyframes(keyframes []Keyframe) DirectorBuilderOption {
	return func(d *directorImpl) {
		if len(keyframes) > 0 {
			d.keyframes = append([]Keyframe(nil), keyframes...)
		}
	}
}

// WithOrbit replaces the ambient orbit.
//
// Parameters:
//   - o: the orbit configuration
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithOrbit(o Orbit) DirectorBuilderOption {
	return func(d *directorImpl) {
		d.orbit = o
	}
}

// WithBreathing replaces the path breathing offsets.
//
// Parameters:
//   - b: the per-axis breathing
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithBreathing(b Breathing) DirectorBuilderOption {
	return func(d *directorImpl) {
		d.breathing = b
	}
}

// WithLightMoods replaces the per-phase light table. An empty table is ignored.
//
// Parameters:
//   - moods: one mood per phase
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithLightMoods(moods []LightMood) DirectorBuilderOption {
	return func(d *directorImpl) {
		if len(moods) > 0 {
			d.moods = append([]LightMood(nil), moods...)
		}
	}
}

// WithLightBreathing replaces the ambient and hemisphere breathing.
//
// Parameters:
//   - b: the breathing configuration
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithLightBreathing(b LightBreathing) DirectorBuilderOption {
	return func(d *directorImpl) {
		d.lightBreathing = b
	}
}

// WithSmoothing sets the exponential smoothing rate k shared by the camera and the lights.
// Non-positive values are ignored.
//
// Parameters:
//   - k: rate per second
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithSmoothing(k float64) DirectorBuilderOption {
	return func(d *directorImpl) {
		if k > 0 {
			d.smoothing = k
		}
	}
}

// WithMaxSpeed bounds how far the eye may travel per second. Non-positive values are ignored.
//
// Parameters:
//   - unitsPerSecond: the speed bound
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithMaxSpeed(unitsPerSecond float64) DirectorBuilderOption {
	return func(d *directorImpl) {
		if unitsPerSecond > 0 {
			d.maxSpeed = unitsPerSecond
		}
	}
}

// WithHeroThreshold sets the progress below which hero mode uses the orbit.
//
// Parameters:
//   - progress: the threshold in [0, 1]
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithHeroThreshold(progress float64) DirectorBuilderOption {
	return func(d *directorImpl) {
		if progress >= 0 && progress <= 1 {
			d.heroThreshold = progress
		}
	}
}

// WithControls sets the initial interaction policy.
//
// Parameters:
//   - c: the policy
//
// Returns:
//   - DirectorBuilderOption: option function to apply
func WithControls(c Controls) DirectorBuilderOption {
	return func(d *directorImpl) {
		d.controls = c
	}
}
