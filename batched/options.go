package batched

import "go.uber.org/zap"

// Option configures record construction.
type Option func(*recordOptions)

type recordOptions struct {
	logger *zap.Logger
}

func defaultRecordOptions() *recordOptions {
	return &recordOptions{
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger used by a record and every record derived from
// it. Construction, materialising reshapes and mask gathers are logged at
// debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *recordOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
