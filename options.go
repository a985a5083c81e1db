package redline

import "go.uber.org/zap"

// options holds session configuration.
type options struct {
	logger *zap.Logger
}

// Option configures an Editor.
type Option func(*options)

func defaultOptions() options {
	return options{logger: zap.NewNop()}
}

// WithLogger sets the structured logger used by the editing session.
// The default discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
