package ibl

import "time"

// BakerBuilderOption is a function that configures a Baker during construction.
type BakerBuilderOption func(*baker)

// WithWorkers is an option builder that sets the maximum number of concurrent
// bake tasks. Values below 1 are raised to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - BakerBuilderOption: a function that applies the worker option to a baker
func WithWorkers(n int) BakerBuilderOption {
	return func(b *baker) {
		b.workers = max(1, n)
	}
}

// WithQueueSize is an option builder that sets how many tasks may wait in the
// pool's queue before submission blocks.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - BakerBuilderOption: a function that applies the queue option to a baker
func WithQueueSize(n int) BakerBuilderOption {
	return func(b *baker) {
		b.queueSize = max(1, n)
	}
}

// WithProfileInterval is an option builder that sets how often bake progress is logged.
//
// Parameters:
//   - d: the logging interval
//
// Returns:
//   - BakerBuilderOption: a function that applies the interval option to a baker
func WithProfileInterval(d time.Duration) BakerBuilderOption {
	return func(b *baker) {
		b.profileInterval = d
	}
}
