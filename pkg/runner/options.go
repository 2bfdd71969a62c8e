package runner

import "log/slog"

// Option configures a Runner.
type Option func(*options)

type options struct {
	limit  int
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		limit:  0,
		logger: slog.Default(),
	}
}

// WithLimit caps the number of concurrently running functions. Zero or
// negative means unbounded. Work scheduled beyond the limit parks on its own
// goroutine until a slot frees up; Go itself never blocks the caller.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithLogger sets the logger used for recovered panics and dropped work.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
