package environment

type EnvironmentBuilderOption func(*environmentImpl)

// WithParams replaces the default environment parameters.
//
// Parameters:
//   - p: the parameters
//
// Returns:
//   - EnvironmentBuilderOption: option function to apply
func WithParams(p Params) EnvironmentBuilderOption {
	return func(e *environmentImpl) {
		e.params = p
	}
}

// WithSeed makes cloud and star placement reproducible.
//
// Parameters:
//   - seed: the generator seed
//
// Returns:
//   - EnvironmentBuilderOption: option function to apply
func WithSeed(seed uint64) EnvironmentBuilderOption {
	return func(e *environmentImpl) {
		e.seed = seed
	}
}
