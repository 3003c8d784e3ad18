package iotf

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the lifecycle position of a Listener.
type State int32

const (
	StateCreated State = iota
	StateConnecting
	StateActive
	StateStopping
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Connection is the session a Listener drives. *ApplicationClient implements it.
type Connection interface {
	Start(ctx context.Context) error
	SubscribeToDeviceStatus(ctx context.Context, f TopicFilter) error
	SubscribeToDeviceEvents(ctx context.Context, f TopicFilter) error
	SubscribeToApplicationStatus(ctx context.Context, appID string) error
	Stop() error
}

// ListenerOption allows to configure a Listener.
type ListenerOption func(*listenerOptions)

// WithListenerLogger sets the Logger the Listener reports its lifecycle to.
func WithListenerLogger(l Logger) ListenerOption {
	return func(o *listenerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStatusFilter narrows the device status subscription. Default AllDevices.
func WithStatusFilter(f TopicFilter) ListenerOption {
	return func(o *listenerOptions) {
		o.statusFilter = f
	}
}

// WithApplicationStatus additionally subscribes to presence changes of appID.
func WithApplicationStatus(appID string) ListenerOption {
	return func(o *listenerOptions) {
		o.appStatus = &appID
	}
}

type listenerOptions struct {
	logger       Logger
	statusFilter TopicFilter
	appStatus    *string
}

// Listener owns a Connection for its whole life: it connects, subscribes to device
// status and device events, waits to be stopped and disconnects exactly once.
//
// State moves Created → Connecting → Active → Stopping → Disconnected and never back.
// A failed connect goes from Connecting straight to Disconnected.
type Listener struct {
	conn    Connection
	filter  TopicFilter
	options *listenerOptions

	mu    sync.Mutex
	state State
	ran   bool

	stopCh   chan struct{}
	stopOnce sync.Once
	ready    chan struct{}
	done     chan struct{}
}

// NewListener creates a Listener delivering events of devices matching filter.
func NewListener(conn Connection, filter TopicFilter, opts ...ListenerOption) *Listener {
	lo := &listenerOptions{logger: defaultLogger, statusFilter: AllDevices}

	for _, opt := range opts {
		opt(lo)
	}

	return &Listener{
		conn:    conn,
		filter:  NewTopicFilter(filter.DeviceType, filter.DeviceID),
		options: lo,
		stopCh:  make(chan struct{}),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// Filter returns the normalised event filter.
func (l *Listener) Filter() TopicFilter { return l.filter }

// Ready is closed once every subscription is in place. It stays open
// when the Listener never gets that far.
func (l *Listener) Ready() <-chan struct{} { return l.ready }

// Done is closed once the Listener reaches StateDisconnected.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Stop asks the Listener to disconnect. It never blocks, may be called any
// number of times from any goroutine, and also works before Run.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Run blocks until the Listener is stopped or ctx is done. It returns the connect or
// subscribe error that ended it early. Stopping, through Stop or through ctx, is not
// an error, and neither is a failed disconnect, which is only logged.
func (l *Listener) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.ran {
		l.mu.Unlock()

		return ErrListenerStarted
	}
	l.ran = true
	l.mu.Unlock()

	defer close(l.done)

	if l.stopRequested() {
		l.setState(StateDisconnected)

		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-l.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	l.setState(StateConnecting)

	if err := l.conn.Start(ctx); err != nil {
		l.setState(StateDisconnected)

		if stopped(ctx, err) {
			return nil
		}

		return fmt.Errorf("connect: %w", err)
	}

	l.setState(StateActive)

	err := l.subscribe(ctx)
	if stopped(ctx, err) {
		err = nil
	}

	if err == nil && ctx.Err() == nil {
		close(l.ready)
		<-ctx.Done()
	}

	l.shutdown()

	return err
}

func (l *Listener) subscribe(ctx context.Context) error {
	if err := l.conn.SubscribeToDeviceStatus(ctx, l.options.statusFilter); err != nil {
		return fmt.Errorf("subscribe to device status %s: %w", l.options.statusFilter, err)
	}

	if l.options.appStatus != nil {
		if err := l.conn.SubscribeToApplicationStatus(ctx, *l.options.appStatus); err != nil {
			return fmt.Errorf("subscribe to application status: %w", err)
		}
	}

	if err := l.conn.SubscribeToDeviceEvents(ctx, l.filter); err != nil {
		return fmt.Errorf("subscribe to device events %s: %w", l.filter, err)
	}

	l.options.logger.Info(ctx, "listening", map[string]any{
		"events": l.filter.String(),
		"status": l.options.statusFilter.String(),
	})

	return nil
}

func (l *Listener) shutdown() {
	l.setState(StateStopping)

	if err := l.conn.Stop(); err != nil {
		l.options.logger.Error(context.Background(), fmt.Errorf("disconnect: %w", err), nil)
	}

	l.setState(StateDisconnected)
}

// stopped reports whether err only says that ctx, and so the Listener, was stopped.
func stopped(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err())
}

func (l *Listener) stopRequested() bool {
	select {
	case <-l.stopCh:
		return true
	default:
		return false
	}
}

func (l *Listener) setState(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.options.logger.Debug(context.Background(), "listener state", map[string]any{
		"from": l.state.String(),
		"to":   s.String(),
	})

	l.state = s
}
