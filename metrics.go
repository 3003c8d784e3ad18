package iotf

import (
	"context"
	"errors"
	"time"

	"github.com/gojek/iotf-listener/metrics"
)

const (
	attemptEvent eventType = 1 << iota
	successEvent
	timeoutEvent
	errorEvent
)

type eventWrapper struct {
	types eventType
}

type eventType uint

func (et eventType) match(e eventType) bool { return et&e != 0 }

// record marks the outcome of the operation that err was returned from.
func (w *eventWrapper) record(err error) {
	switch {
	case err == nil:
		w.types |= successEvent
	case isTimeout(err):
		w.types |= timeoutEvent | errorEvent
	default:
		w.types |= errorEvent
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrConnectTimeout) ||
		errors.Is(err, ErrSubscribeTimeout) ||
		errors.Is(err, ErrUnsubscribeTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (c *ApplicationClient) reportEvents(op metrics.Operation, w *eventWrapper, duration time.Duration) {
	r := metrics.Result{
		OpType:      op,
		RunDuration: duration,
	}

	if w.types.match(attemptEvent) {
		r.Attempts = 1
	}

	if w.types.match(successEvent) {
		r.Successes = 1
	}

	if w.types.match(errorEvent) {
		r.Errors = 1
	}

	if w.types.match(timeoutEvent) {
		r.Timeouts = 1
	}

	c.options.collector.Update(r)
}
