package metrics

import (
	"fmt"
	"sync"

	gokitprom "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	subsystemPrefix         = "iotf"
	subsystemConnect        = subsystemPrefix + "_connect"
	subsystemSubscribe      = subsystemPrefix + "_subscribe"
	subsystemUnsubscribe    = subsystemPrefix + "_unsubscribe"
	subsystemDisconnect     = subsystemPrefix + "_disconnect"
	subsystemEventCallback  = subsystemPrefix + "_event_callback"
	subsystemStatusCallback = subsystemPrefix + "_status_callback"

	metricSuccesses   = "successes"
	metricAttempts    = "attempts"
	metricErrors      = "errors"
	metricTimeouts    = "timeouts"
	metricRunDuration = "run_duration"
)

var (
	opSubsystemMap = map[Operation]string{
		ConnectOp:        subsystemConnect,
		SubscribeOp:      subsystemSubscribe,
		UnsubscribeOp:    subsystemUnsubscribe,
		DisconnectOp:     subsystemDisconnect,
		EventCallbackOp:  subsystemEventCallback,
		StatusCallbackOp: subsystemStatusCallback,
	}

	counters   = []string{metricSuccesses, metricAttempts, metricErrors, metricTimeouts}
	histograms = []string{metricRunDuration}
)

// NewPrometheus creates a PrometheusMetrics instance which implements the Collector interface
func NewPrometheus() *PrometheusMetrics {
	om := make(map[Operation]*Aggregator, len(opSubsystemMap))
	for op := range opSubsystemMap {
		om[op] = &Aggregator{}
	}

	return &PrometheusMetrics{operationMap: om}
}

// PrometheusMetrics is a prometheus collector for iotf.ApplicationClient operations.
// Results are dropped until AddToRegistry has been called.
type PrometheusMetrics struct {
	mu           sync.RWMutex
	operationMap map[Operation]*Aggregator
}

// Update implements Collector.
func (p *PrometheusMetrics) Update(r Result) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	a, ok := p.operationMap[r.OpType]
	if !ok {
		return
	}

	if r.Attempts > 0 && a.Attempts != nil {
		a.Attempts.Add(float64(r.Attempts))
	}

	if r.Timeouts > 0 && a.Timeouts != nil {
		a.Timeouts.Add(float64(r.Timeouts))
	}

	if r.Errors > 0 && a.Errors != nil {
		a.Errors.Add(float64(r.Errors))
	}

	if r.Successes > 0 && a.Successes != nil {
		a.Successes.Add(float64(r.Successes))
	}

	if r.RunDuration > 0 && a.RunDuration != nil {
		a.RunDuration.Observe(r.RunDuration.Seconds())
	}
}

// AddToRegistry is used to register the collectors with a prometheus.Registerer
func (p *PrometheusMetrics) AddToRegistry(registerer prometheus.Registerer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for s, op := range p.operationMap {
		for _, c := range counters {
			v, cv := newCounterRefFrom(prometheus.CounterOpts{
				Name:      c,
				Help:      fmt.Sprintf("%s counter", c),
				Subsystem: opSubsystemMap[s],
			}, nil)
			if err := registerer.Register(cv); err != nil {
				return err
			}

			addCounterRefToOp(c, v, op)
		}

		for _, h := range histograms {
			v, hv := newHistogramRefFrom(prometheus.HistogramOpts{
				Name:      h,
				Help:      fmt.Sprintf("%s histogram", h),
				Subsystem: opSubsystemMap[s],
			}, nil)
			if err := registerer.Register(hv); err != nil {
				return err
			}

			op.RunDuration = v
		}
	}

	return nil
}

func newCounterRefFrom(opts prometheus.CounterOpts, labelNames []string) (*gokitprom.Counter, prometheus.Collector) {
	cv := prometheus.NewCounterVec(opts, labelNames)

	return gokitprom.NewCounter(cv), cv
}

func newHistogramRefFrom(opts prometheus.HistogramOpts, labelNames []string) (*gokitprom.Histogram, prometheus.Collector) {
	hv := prometheus.NewHistogramVec(opts, labelNames)

	return gokitprom.NewHistogram(hv), hv
}

func addCounterRefToOp(name string, c *gokitprom.Counter, a *Aggregator) {
	switch name {
	case metricSuccesses:
		a.Successes = c
	case metricAttempts:
		a.Attempts = c
	case metricErrors:
		a.Errors = c
	case metricTimeouts:
		a.Timeouts = c
	}
}
