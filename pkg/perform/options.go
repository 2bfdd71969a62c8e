package perform

import "log/slog"

// StoreOption configures a store implementation.
type StoreOption func(*storeOptions)

type storeOptions struct {
	exec   Executor
	logger *slog.Logger
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		exec:   goExecutor{},
		logger: slog.Default(),
	}
}

// WithExecutor sets the executor used for detached activation and detached
// runs. Defaults to spawning one goroutine per call.
func WithExecutor(exec Executor) StoreOption {
	return func(o *storeOptions) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithLogger sets the logger used to report completion-write failures of
// detached operations, which have no caller left to return an error to.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
