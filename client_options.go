package iotf

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/gojek/iotf-listener/metrics"
)

const (
	// QuickstartOrg is the unauthenticated sandbox organization.
	QuickstartOrg = "quickstart"
	// DefaultDomain is the platform domain brokers are addressed under.
	DefaultDomain = "internetofthings.ibmcloud.com"
	// DefaultAuthMethod is the only authentication method application clients use.
	DefaultAuthMethod = "apikey"

	securePort   uint16 = 8883
	insecurePort uint16 = 1883
)

// ClientOption allows to configure the behaviour of an ApplicationClient.
type ClientOption interface{ apply(*clientOptions) }

// WithOrganization sets the organization the application belongs to.
func WithOrganization(orgID string) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.orgID = orgID
	})
}

// WithAppID sets the application id. A random one is generated when it is left blank.
func WithAppID(appID string) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.appID = appID
	})
}

// WithAPIKey sets the API key, sent as the MQTT username.
func WithAPIKey(apiKey string) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.apiKey = apiKey
	})
}

// WithAuthToken sets the authentication token, sent as the MQTT password.
func WithAuthToken(token string) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.authToken = token
	})
}

// WithAuthMethod sets the authentication method, "apikey" by default.
func WithAuthMethod(method string) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.authMethod = method
	})
}

// WithDomain sets the platform domain; the broker host is "<org>.messaging.<domain>".
func WithDomain(domain string) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.domain = domain
	})
}

// WithPort sets the broker port. Port 1883 is plain TCP, every other port uses TLS.
func WithPort(port uint16) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.port = port
	})
}

// WithAddress overrides the broker host and port derived from the organization,
// for example to reach a local broker.
func WithAddress(host string, port uint16) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.brokerAddress = fmt.Sprintf("%s:%d", host, port)
		o.port = port
	})
}

// WithTLS sets the TLS configuration used for secure ports.
func WithTLS(tlsConfig *tls.Config) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.tlsConfig = tlsConfig
	})
}

// WithCleanSession will set the "clean session" flag in the connect message.
func WithCleanSession(cleanSession bool) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.cleanSession = cleanSession
	})
}

// WithSharedSubscription connects as a scalable application so that several
// instances sharing an app id split the subscribed messages between them.
func WithSharedSubscription(shared bool) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.sharedSubscription = shared
	})
}

// WithAutoReconnect sets whether the transport reconnects on its own
// when the connection is lost. Disabled by default.
func WithAutoReconnect(autoReconnect bool) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.autoReconnect = autoReconnect
	})
}

// WithKeepAlive sets the interval between PING requests to the broker.
func WithKeepAlive(duration time.Duration) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.keepAlive = duration
	})
}

// WithConnectTimeout limits how long Start waits for the connection. Default 30 seconds.
func WithConnectTimeout(duration time.Duration) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.connectTimeout = duration
	})
}

// WithWriteTimeout limits how long a subscribe or unsubscribe waits
// when the context has no deadline. Default 10 seconds.
func WithWriteTimeout(duration time.Duration) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.writeTimeout = duration
	})
}

// WithGracefulShutdownPeriod sets the limit that is allowed for existing work to be completed on Stop.
func WithGracefulShutdownPeriod(duration time.Duration) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.gracefulShutdownPeriod = duration
	})
}

// WithOnConnectionLost will set the OnConnectionLostHandler callback to be executed
// in the case where the client unexpectedly loses connection with the platform.
func WithOnConnectionLost(handler OnConnectionLostHandler) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.onConnectionLostHandler = handler
	})
}

// WithMetrics sets the collector that receives operation results.
func WithMetrics(collector metrics.Collector) ClientOption {
	return optionFunc(func(o *clientOptions) {
		if collector != nil {
			o.collector = collector
		}
	})
}

type clientOptions struct {
	orgID, appID, apiKey, authToken, authMethod,
	domain, brokerAddress string
	port uint16

	credentialFetcher CredentialFetcher

	tlsConfig *tls.Config

	autoReconnect, cleanSession, sharedSubscription bool

	connectTimeout, writeTimeout, keepAlive,
	gracefulShutdownPeriod, credentialFetchTimeout time.Duration

	onConnectionLostHandler OnConnectionLostHandler

	newDecoder DecoderFunc
	logger     Logger
	collector  metrics.Collector
}

type optionFunc func(*clientOptions)

func (f optionFunc) apply(o *clientOptions) { f(o) }

func defaultClientOptions() *clientOptions {
	return &clientOptions{
		authMethod:             DefaultAuthMethod,
		domain:                 DefaultDomain,
		cleanSession:           true,
		connectTimeout:         30 * time.Second,
		writeTimeout:           10 * time.Second,
		gracefulShutdownPeriod: 5 * time.Second,
		keepAlive:              60 * time.Second,
		credentialFetchTimeout: 10 * time.Second,
		newDecoder:             DefaultDecoderFunc,
		logger:                 defaultLogger,
		collector:              metrics.Noop{},
	}
}

func (o *clientOptions) isQuickstart() bool { return o.orgID == QuickstartOrg }

func (o *clientOptions) brokerPort() uint16 {
	switch {
	case o.port != 0:
		return o.port
	case o.isQuickstart():
		return insecurePort
	default:
		return securePort
	}
}

func (o *clientOptions) address() string {
	if o.brokerAddress != "" {
		return o.brokerAddress
	}

	return fmt.Sprintf("%s.messaging.%s:%d", o.orgID, o.domain, o.brokerPort())
}

func (o *clientOptions) secure() bool { return o.brokerPort() != insecurePort }

func (o *clientOptions) clientID() string {
	prefix := "a"
	if o.sharedSubscription {
		prefix = "A"
	}

	return fmt.Sprintf("%s:%s:%s", prefix, o.orgID, o.appID)
}
