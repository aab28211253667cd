package edba

import "context"

// Logger is a structured logging interface compatible with *slog.Logger,
// so callers can pass slog.Default() directly without an adapter.
type Logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) InfoContext(context.Context, string, ...any)  {}
func (noopLogger) WarnContext(context.Context, string, ...any)  {}
func (noopLogger) ErrorContext(context.Context, string, ...any) {}

func defaultLogger() Logger { return noopLogger{} }

// Option configures a Session or Pool at construction time.
type Option func(*options)

type options struct {
	logger       Logger
	monitor      Monitor
	initCallback func(*Session) error
}

func newOptions(opts []Option) *options {
	o := &options{logger: defaultLogger()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger installs a structured logger. edba logs only failures to
// close a cached statement or a stale pooled connection; it never logs
// on the data path.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMonitor installs a session monitor (spec §4.7).
func WithMonitor(m Monitor) Option {
	return func(o *options) { o.monitor = m }
}

// WithInitCallback installs a Pool's one-shot per-connection init hook
// (spec §4.8). It has no effect on edba.Open, which opens a single
// connection directly.
func WithInitCallback(fn func(*Session) error) Option {
	return func(o *options) { o.initCallback = fn }
}
