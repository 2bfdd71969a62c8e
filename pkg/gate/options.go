package gate

import "log/slog"

// Option configures a Gate.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for debug-level gate transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
