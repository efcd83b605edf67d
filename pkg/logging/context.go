package logging

import (
	"context"

	"go.uber.org/zap"
)

type noticeCtxKey struct{}
type runCtxKey struct{}

// WithNotice records the notice being processed.
func WithNotice(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, noticeCtxKey{}, path)
}

// NoticeFromContext returns the notice path, or "".
func NoticeFromContext(ctx context.Context) string {
	path, _ := ctx.Value(noticeCtxKey{}).(string)
	return path
}

// WithRunID records the identifier of one conversion run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runCtxKey{}, id)
}

// RunIDFromContext returns the run identifier, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runCtxKey{}).(string)
	return id
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 2)
	if path := NoticeFromContext(ctx); path != "" {
		fields = append(fields, zap.String("notice", path))
	}
	if id := RunIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("run.id", id))
	}
	return fields
}
