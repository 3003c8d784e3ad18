// Package zaplog backs iotf.Logger with go.uber.org/zap.
package zaplog

import (
	"context"
	"sort"

	"go.uber.org/zap"

	iotf "github.com/gojek/iotf-listener"
)

// New returns a new iotf.Logger that writes to l.
func New(l *zap.Logger) iotf.Logger {
	return &zapWrapper{log: l}
}

var _ iotf.Logger = (*zapWrapper)(nil)

type zapWrapper struct {
	log *zap.Logger
}

func (zw *zapWrapper) Info(_ context.Context, msg string, attrs map[string]any) {
	zw.log.Info(msg, fields(attrs)...)
}

func (zw *zapWrapper) Error(_ context.Context, err error, attrs map[string]any) {
	if err == nil {
		zw.log.Error("unknown error", fields(attrs)...)

		return
	}

	zw.log.Error(err.Error(), fields(attrs)...)
}

func (zw *zapWrapper) Warn(_ context.Context, msg string, attrs map[string]any) {
	zw.log.Warn(msg, fields(attrs)...)
}

func (zw *zapWrapper) Debug(_ context.Context, msg string, attrs map[string]any) {
	zw.log.Debug(msg, fields(attrs)...)
}

// fields keeps attribute order stable so log lines are comparable.
func fields(attrs map[string]any) []zap.Field {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	fs := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fs = append(fs, zap.Any(k, attrs[k]))
	}

	return fs
}
