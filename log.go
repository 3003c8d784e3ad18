package iotf

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// WithLogger sets the Logger to use for the client.
func WithLogger(l Logger) ClientOption { return optionFunc(func(o *clientOptions) { o.logger = l }) }

// Logger is the interface that wraps the Info and Error methods.
type Logger interface {
	Error(ctx context.Context, err error, attrs map[string]any)
	Warn(ctx context.Context, msg string, attrs map[string]any)
	Info(ctx context.Context, msg string, attrs map[string]any)
	Debug(ctx context.Context, msg string, attrs map[string]any)
}

var defaultLogger Logger = noOpLogger{}

type noOpLogger struct{}

func (noOpLogger) Error(context.Context, error, map[string]any)  {}
func (noOpLogger) Warn(context.Context, string, map[string]any)  {}
func (noOpLogger) Info(context.Context, string, map[string]any)  {}
func (noOpLogger) Debug(context.Context, string, map[string]any) {}

// UseTransportLogger routes the MQTT transport's own ERROR, CRITICAL and WARN
// output to l. The transport loggers are process wide; DEBUG stays silent.
func UseTransportLogger(l Logger) {
	mqtt.ERROR = &pahoLogger{logger: l, level: errorLevel}
	mqtt.CRITICAL = &pahoLogger{logger: l, level: errorLevel}
	mqtt.WARN = &pahoLogger{logger: l, level: warnLevel}
}

type logLevel int

const (
	warnLevel logLevel = iota
	errorLevel
)

type pahoLogger struct {
	logger Logger
	level  logLevel
}

func (l *pahoLogger) Println(v ...interface{}) {
	l.log(fmt.Sprint(v...))
}

func (l *pahoLogger) Printf(format string, v ...interface{}) {
	l.log(fmt.Sprintf(format, v...))
}

func (l *pahoLogger) log(msg string) {
	attrs := map[string]any{"component": "transport"}

	switch l.level {
	case errorLevel:
		l.logger.Error(context.Background(), fmt.Errorf("%s", msg), attrs)
	case warnLevel:
		l.logger.Warn(context.Background(), msg, attrs)
	}
}
