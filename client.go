package iotf

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gojekfarm/xtools/generic"
	"github.com/google/uuid"

	"github.com/gojek/iotf-listener/metrics"
)

var newClientFunc = defaultNewClientFunc()

// ApplicationClient is an authenticated application session with the platform.
// Event and status handlers are fixed at construction, so no message can arrive
// before somebody is there to receive it.
type ApplicationClient struct {
	options *clientOptions

	events EventHandler
	status StatusHandler

	mqttClient mqtt.Client
	clientMu   sync.RWMutex

	subscriptions generic.Set[string]
	subMu         sync.Mutex
}

// NewApplicationClient creates an ApplicationClient that delivers events and commands
// to events and presence changes to status.
func NewApplicationClient(events EventHandler, status StatusHandler, opts ...ClientOption) (*ApplicationClient, error) {
	if events == nil || status == nil {
		return nil, ErrNilHandler
	}

	co := defaultClientOptions()

	for _, opt := range opts {
		opt.apply(co)
	}

	if co.orgID == "" {
		return nil, ErrMissingOrganization
	}

	if !co.isQuickstart() && co.credentialFetcher == nil && (co.apiKey == "" || co.authToken == "") {
		return nil, ErrMissingCredentials
	}

	if co.appID == "" {
		co.appID = generateAppID()
	}

	return &ApplicationClient{
		options:       co,
		events:        events,
		status:        status,
		subscriptions: generic.NewSet[string](),
	}, nil
}

// OrgID returns the organization the client belongs to.
func (c *ApplicationClient) OrgID() string { return c.options.orgID }

// AppID returns the configured or generated application id.
func (c *ApplicationClient) AppID() string { return c.options.appID }

// ClientID returns the MQTT client id, "a:<org>:<app>".
func (c *ApplicationClient) ClientID() string { return c.options.clientID() }

// IsConnected checks whether the client is connected to the platform
func (c *ApplicationClient) IsConnected() (online bool) {
	_ = c.execute(func(cc mqtt.Client) error {
		online = cc.IsConnectionOpen()

		return nil
	})

	return
}

// Start connects to the platform. It gives up when ctx is done or the
// connect timeout elapses, whichever comes first, and then abandons the attempt.
// Calling Start again replaces and disconnects the previous session.
func (c *ApplicationClient) Start(ctx context.Context) (err error) {
	ew := &eventWrapper{types: attemptEvent}
	begin := time.Now()

	defer func() {
		ew.record(err)
		c.reportEvents(metrics.ConnectOp, ew, time.Since(begin))
	}()

	cred, err := c.credentials(ctx)
	if err != nil {
		return fmt.Errorf("fetch credentials: %w", err)
	}

	cc := newClientFunc.Load().(func(*mqtt.ClientOptions) mqtt.Client)(toClientOptions(c.options, cred))

	c.clientMu.Lock()
	prev := c.mqttClient
	c.mqttClient = cc
	c.clientMu.Unlock()

	if prev != nil {
		prev.Disconnect(0)
	}

	c.options.logger.Info(ctx, "connecting", map[string]any{
		"address":  c.options.address(),
		"clientID": c.options.clientID(),
	})

	err = c.waitForToken(ctx, cc.Connect(), c.options.connectTimeout, ErrConnectTimeout)
	if err != nil {
		// the transport is still connecting in the background
		cc.Disconnect(0)

		c.clientMu.Lock()
		if c.mqttClient == cc {
			c.mqttClient = nil
		}
		c.clientMu.Unlock()
	}

	return err
}

// Stop removes the subscriptions made through the client and disconnects.
// It is attempted once; failures are returned and not retried.
func (c *ApplicationClient) Stop() (err error) {
	ew := &eventWrapper{types: attemptEvent}
	begin := time.Now()

	defer func() {
		ew.record(err)
		c.reportEvents(metrics.DisconnectOp, ew, time.Since(begin))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.options.gracefulShutdownPeriod)
	defer cancel()

	err = c.unsubscribeAll(ctx)

	if dErr := c.execute(func(cc mqtt.Client) error {
		cc.Disconnect(uint(c.options.gracefulShutdownPeriod / time.Millisecond))

		return nil
	}); dErr != nil {
		err = accumulateErrors(err, dErr)
	}

	return err
}

// Run will start the client, wait for ctx to be done and stop it.
func (c *ApplicationClient) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return c.Stop()
}

func (c *ApplicationClient) execute(f func(mqtt.Client) error) error {
	c.clientMu.RLock()
	defer c.clientMu.RUnlock()

	if c.mqttClient == nil {
		return ErrClientNotInitialized
	}

	return f(c.mqttClient)
}

func (c *ApplicationClient) handleToken(ctx context.Context, t mqtt.Token, timeoutErr error) error {
	if _, ok := ctx.Deadline(); ok {
		return c.waitForToken(ctx, t, 0, timeoutErr)
	}

	return c.waitForToken(ctx, t, c.options.writeTimeout, timeoutErr)
}

// waitForToken blocks until t completes, ctx is done or timeout elapses.
// A zero timeout only waits on t and ctx.
func (c *ApplicationClient) waitForToken(ctx context.Context, t mqtt.Token, timeout time.Duration, timeoutErr error) error {
	var expired <-chan time.Time

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		expired = timer.C
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return timeoutErr
	case <-t.Done():
		return t.Error()
	}
}

func toClientOptions(o *clientOptions, cred *Credential) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(formatAddressWithProtocol(o)).
		SetClientID(o.clientID()).
		SetAutoReconnect(o.autoReconnect).
		SetCleanSession(o.cleanSession).
		SetOrderMatters(true).
		SetKeepAlive(o.keepAlive).
		SetConnectTimeout(o.connectTimeout).
		SetWriteTimeout(o.writeTimeout).
		SetConnectionLostHandler(connectionLostHandler(o)).
		SetOnConnectHandler(onConnectHandler(o))

	if !o.isQuickstart() {
		opts.SetUsername(cred.APIKey).SetPassword(cred.AuthToken)
	}

	if o.secure() {
		tlsConfig := o.tlsConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		opts.SetTLSConfig(tlsConfig)
	}

	return opts
}

func formatAddressWithProtocol(opts *clientOptions) string {
	if opts.secure() {
		return fmt.Sprintf("ssl://%s", opts.address())
	}

	return fmt.Sprintf("tcp://%s", opts.address())
}

func connectionLostHandler(o *clientOptions) mqtt.ConnectionLostHandler {
	return func(_ mqtt.Client, err error) {
		o.logger.Error(context.Background(), fmt.Errorf("connection lost: %w", err), map[string]any{
			"clientID": o.clientID(),
		})

		if o.onConnectionLostHandler != nil {
			o.onConnectionLostHandler(err)
		}
	}
}

func onConnectHandler(o *clientOptions) mqtt.OnConnectHandler {
	return func(_ mqtt.Client) {
		o.logger.Info(context.Background(), "connected", map[string]any{
			"clientID": o.clientID(),
			"address":  o.address(),
		})
	}
}

func generateAppID() string {
	return "a" + strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
}

func defaultNewClientFunc() *atomic.Value {
	v := &atomic.Value{}
	v.Store(mqtt.NewClient)

	return v
}
