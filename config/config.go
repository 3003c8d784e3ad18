// Package config loads the listener configuration from a properties resource.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	iotf "github.com/gojek/iotf-listener"
	"github.com/gojek/iotf-listener/consul"
	"github.com/gojek/iotf-listener/zaplog"
)

//go:embed application.properties
var defaultProperties []byte

// ErrConfigUnreadable is matched by every error Load returns.
var ErrConfigUnreadable = errors.New("config: not able to read the configuration")

const (
	keyOrganization       = "Organization-ID"
	keyAppID              = "id"
	keyAuthMethod         = "Authentication-Method"
	keyAPIKey             = "API-Key"
	keyAuthToken          = "Authentication-Token"
	keyDeviceType         = "Device-Type"
	keyDeviceID           = "Device-ID"
	keyDomain             = "Domain"
	keyPort               = "Port"
	keyCleanSession       = "Clean-Session"
	keySharedSubscription = "Shared-Subscription"
	keyLogLevel           = "Log-Level"
	keyLogFormat          = "Log-Format"
	keyLogFile            = "Log-File"
	keyMetricsAddress     = "Metrics-Address"
	keyConsulAddress      = "Consul-Address"
	keyConsulKeyPrefix    = "Consul-Key-Prefix"

	envPrefix = "IOTF"
)

// LoggingConfig holds the Log-* keys.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// ConsulConfig holds the Consul-* keys. Both are set or both are blank.
type ConsulConfig struct {
	Address   string
	KeyPrefix string
}

// Enabled reports whether credentials come from Consul.
func (c ConsulConfig) Enabled() bool { return c.Address != "" }

// Config is the listener configuration. It is never modified after Load.
type Config struct {
	Organization       string
	AppID              string
	AuthMethod         string
	APIKey             string
	AuthToken          string
	DeviceType         string
	DeviceID           string
	Domain             string
	Port               uint16
	CleanSession       bool
	SharedSubscription bool
	Logging            LoggingConfig
	MetricsAddress     string
	Consul             ConsulConfig

	// Source is the file the configuration was read from, or "embedded".
	Source string
}

// UnreadableError describes why a configuration could not be loaded.
type UnreadableError struct {
	Source string
	Err    error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrConfigUnreadable, e.Source, e.Err)
}

func (e *UnreadableError) Unwrap() []error { return []error{ErrConfigUnreadable, e.Err} }

// Load reads the properties file at path, or the embedded default when path is empty.
// Values in IOTF_* environment variables win over the file, e.g. IOTF_API_KEY.
// Load never returns a partially populated Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("properties")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	source := "embedded"

	var err error
	if path == "" {
		err = v.ReadConfig(bytes.NewReader(defaultProperties))
	} else {
		source = path
		v.SetConfigFile(path)
		err = v.ReadInConfig()
	}

	if err != nil {
		return nil, &UnreadableError{Source: source, Err: err}
	}

	cfg, err := parse(v)
	if err != nil {
		return nil, &UnreadableError{Source: source, Err: err}
	}

	cfg.Source = source

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAuthMethod, iotf.DefaultAuthMethod)
	v.SetDefault(keyDomain, iotf.DefaultDomain)
	v.SetDefault(keyCleanSession, "true")
	v.SetDefault(keySharedSubscription, "false")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "console")
}

func parse(v *viper.Viper) (*Config, error) {
	get := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	var errs *multierror.Error

	cfg := &Config{
		Organization: get(keyOrganization),
		AppID:        get(keyAppID),
		AuthMethod:   get(keyAuthMethod),
		APIKey:       get(keyAPIKey),
		AuthToken:    get(keyAuthToken),
		DeviceType:   get(keyDeviceType),
		DeviceID:     get(keyDeviceID),
		Domain:       get(keyDomain),
		Logging: LoggingConfig{
			Level:  get(keyLogLevel),
			Format: get(keyLogFormat),
			File:   get(keyLogFile),
		},
		MetricsAddress: get(keyMetricsAddress),
		Consul: ConsulConfig{
			Address:   get(keyConsulAddress),
			KeyPrefix: get(keyConsulKeyPrefix),
		},
	}

	if cfg.Organization == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s is required", keyOrganization))
	}

	if p := get(keyPort); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil || port == 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s must be a port number, got %q", keyPort, p))
		}

		cfg.Port = uint16(port)
	}

	var err error
	if cfg.CleanSession, err = parseBool(get(keyCleanSession)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", keyCleanSession, err))
	}

	if cfg.SharedSubscription, err = parseBool(get(keySharedSubscription)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", keySharedSubscription, err))
	}

	if (cfg.Consul.Address == "") != (cfg.Consul.KeyPrefix == "") {
		errs = multierror.Append(errs, fmt.Errorf("%s and %s must be set together", keyConsulAddress, keyConsulKeyPrefix))
	}

	if cfg.Organization != "" && cfg.Organization != iotf.QuickstartOrg && !cfg.Consul.Enabled() {
		if cfg.APIKey == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s is required for organization %s", keyAPIKey, cfg.Organization))
		}

		if cfg.AuthToken == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s is required for organization %s", keyAuthToken, cfg.Organization))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected true or false, got %q", s)
	}

	return b, nil
}

// TopicFilter is the device filter events are subscribed with.
func (c *Config) TopicFilter() iotf.TopicFilter {
	return iotf.NewTopicFilter(c.DeviceType, c.DeviceID)
}

// ZapConfig is the logger configuration for zaplog.Build.
func (c *Config) ZapConfig() zaplog.Config {
	zc := zaplog.DefaultConfig()
	zc.Level = c.Logging.Level
	zc.Format = c.Logging.Format
	zc.File = c.Logging.File

	return zc
}

// ConsulConfig returns the credential source, or nil when credentials come from the file.
func (c *Config) ConsulConfig() *consul.Config {
	if !c.Consul.Enabled() {
		return nil
	}

	cc := consul.DefaultConfig()
	cc.Address = c.Consul.Address
	cc.KeyPrefix = c.Consul.KeyPrefix

	return cc
}

// ClientOptions maps the configuration onto iotf.ClientOption values.
func (c *Config) ClientOptions() []iotf.ClientOption {
	opts := []iotf.ClientOption{
		iotf.WithOrganization(c.Organization),
		iotf.WithAppID(c.AppID),
		iotf.WithAuthMethod(c.AuthMethod),
		iotf.WithAPIKey(c.APIKey),
		iotf.WithAuthToken(c.AuthToken),
		iotf.WithDomain(c.Domain),
		iotf.WithCleanSession(c.CleanSession),
		iotf.WithSharedSubscription(c.SharedSubscription),
	}

	if c.Port != 0 {
		opts = append(opts, iotf.WithPort(c.Port))
	}

	return opts
}
