package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	iotf "github.com/gojek/iotf-listener"
)

// consoleSink prints what the platform delivers. It is both the event and the status handler.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out}
}

func (s *consoleSink) HandleEvent(_ context.Context, e *iotf.Event) {
	s.printf("%s--%s\n", e.Source(), e.String())
}

// HandleCommand ignores commands, the listener only subscribes to events.
func (s *consoleSink) HandleCommand(context.Context, *iotf.Command) {}

func (s *consoleSink) HandleDeviceStatus(_ context.Context, st *iotf.DeviceStatus) {
	s.printf("%s\n", st.String())
}

func (s *consoleSink) HandleApplicationStatus(_ context.Context, st *iotf.ApplicationStatus) {
	s.printf("%s\n", st.String())
}

func (s *consoleSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.out, format, args...)
}
