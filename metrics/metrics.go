// Package metrics collects the outcome of iotf.ApplicationClient operations.
package metrics

import "time"

// Operation identifies what a Result was measured for.
type Operation int

const (
	// ConnectOp is ApplicationClient.Start
	ConnectOp Operation = iota
	// SubscribeOp is any ApplicationClient.SubscribeTo* call
	SubscribeOp
	// UnsubscribeOp is ApplicationClient.Unsubscribe
	UnsubscribeOp
	// DisconnectOp is ApplicationClient.Stop
	DisconnectOp
	// EventCallbackOp is the delivery of an event or command to the event handler
	EventCallbackOp
	// StatusCallbackOp is the delivery of a presence change to the status handler
	StatusCallbackOp
)

func (o Operation) String() string {
	if s, ok := opSubsystemMap[o]; ok {
		return s
	}

	return "unknown"
}

// Result is a single observation of an Operation.
type Result struct {
	OpType      Operation
	Attempts    int
	Successes   int
	Errors      int
	Timeouts    int
	RunDuration time.Duration
}

// Collector receives every Result an ApplicationClient produces.
// Update is called on the goroutine that ran the operation and must not block.
type Collector interface {
	Update(Result)
}

// Noop discards every Result.
type Noop struct{}

// Update implements Collector.
func (Noop) Update(Result) {}

// Aggregator holds the collectors of one Operation.
type Aggregator struct {
	// Attempts is a counter which tracks number of attempts for an operation
	Attempts Counter

	// Timeouts is a counter which tracks number of timeouts for an operation
	Timeouts Counter

	// Errors is a counter which tracks number of errors for an operation
	Errors Counter

	// Successes is a counter which tracks number of successes for an operation
	Successes Counter

	// RunDuration is a histogram which tracks run durations of an operation
	RunDuration Histogram
}
