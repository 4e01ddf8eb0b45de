package logger

import "context"

type contextKey string

const RunIDKey contextKey = "run_id"
const ThreadIDKey contextKey = "thread_id"

func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

func WithThreadID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ThreadIDKey, id)
}

func GetThreadID(ctx context.Context) string {
	if id, ok := ctx.Value(ThreadIDKey).(string); ok {
		return id
	}
	return ""
}
