package logx

import (
	"context"

	"pkt.systems/intelhub/schema"
	"pkt.systems/pslog"
)

type contextKey int

const tabKey contextKey = iota

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithTab annotates the logger with the tab key if present.
func WithTab(ctx context.Context, key schema.TabKey) pslog.Logger {
	log := pslog.Ctx(ctx)
	if key != "" {
		if current, ok := ctx.Value(tabKey).(schema.TabKey); ok && current == key {
			return log
		}
		log = log.With("tab", key)
	}
	return log
}

// ContextWithTab stores the tab marker on the context for log de-duplication.
func ContextWithTab(ctx context.Context, key schema.TabKey) context.Context {
	if ctx == nil || key == "" {
		return ctx
	}
	return context.WithValue(ctx, tabKey, key)
}

// ContextWithTabLogger attaches the logger and tab marker to the context.
func ContextWithTabLogger(ctx context.Context, log pslog.Logger, key schema.TabKey) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithTab(ctx, key)
}
