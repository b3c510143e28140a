package logger

import "context"

type contextKey struct{}

// LogContext holds connection-scoped fields that every log line about that
// connection should carry.
type LogContext struct {
	TraceID   string
	SpanID    string
	Address   string // remote host:port
	Command   string // SMB2 command name
	MessageID uint64
}

// WithContext returns a copy of ctx carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// appendContextFields prepends the LogContext fields to args.
func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	out := make([]any, 0, 10+len(args))
	if lc.TraceID != "" {
		out = append(out, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		out = append(out, KeySpanID, lc.SpanID)
	}
	if lc.Address != "" {
		out = append(out, KeyAddress, lc.Address)
	}
	if lc.Command != "" {
		out = append(out, KeyCommand, lc.Command)
	}
	if lc.MessageID != 0 {
		out = append(out, KeyMessageID, lc.MessageID)
	}
	return append(out, args...)
}
