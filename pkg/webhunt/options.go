package webhunt

import "github.com/crimson-sun/webhunt/internal/config"

type options struct {
	minRequests int
	topN        int
	workers     int
}

// Option configures an analysis run.
type Option func(*options)

// WithMinRequests sets the minimum request count before an address is
// scored. Addresses below the floor never appear in the ranking.
// Default: 50.
func WithMinRequests(n int) Option {
	return func(o *options) {
		o.minRequests = n
	}
}

// WithTopN sets how many top-scored addresses the result details.
// Default: 10.
func WithTopN(n int) Option {
	return func(o *options) {
		o.topN = n
	}
}

// WithWorkers sets how many log files are read concurrently. The merged
// event order is deterministic regardless of this value. Default: 4.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func defaultOptions() options {
	return options{
		minRequests: config.DefaultMinRequests,
		topN:        config.DefaultTopN,
		workers:     config.DefaultWorkers,
	}
}
