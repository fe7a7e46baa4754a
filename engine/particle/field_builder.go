package particle

type FieldBuilderOption func(*fieldImpl)

// WithSeed makes the field's random sequence reproducible.
//
// Parameters:
//   - seed: the generator seed
//
// Returns:
//   - FieldBuilderOption: option function to apply
func WithSeed(seed uint64) FieldBuilderOption {
	return func(f *fieldImpl) {
		f.seed = seed
	}
}

// WithDrift sets the horizontal sinusoidal drift as a fraction of the field speed.
// Negative values are ignored.
//
// Parameters:
//   - fraction: drift amplitude relative to speed
//
// Returns:
//   - FieldBuilderOption: option function to apply
func WithDrift(fraction float64) FieldBuilderOption {
	return func(f *fieldImpl) {
		if fraction >= 0 {
			f.drift = fraction
		}
	}
}
