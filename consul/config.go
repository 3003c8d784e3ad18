package consul

import (
	"errors"
	"strings"
	"time"
)

// Config describes where in Consul KV the platform credentials are kept.
// The API key is read from "<KeyPrefix>/api-key" and the token from
// "<KeyPrefix>/auth-token".
type Config struct {
	Address   string
	KeyPrefix string
	// Token is the Consul ACL token, if the agent requires one.
	Token string
	// WaitTime bounds a single KV read when the caller's context has no deadline.
	WaitTime time.Duration
}

// DefaultConfig returns a Config pointing at the local agent.
func DefaultConfig() *Config {
	return &Config{
		Address:  "localhost:8500",
		WaitTime: 10 * time.Second,
	}
}

// Validate checks that the Config can be used.
func (c *Config) Validate() error {
	if strings.Trim(c.KeyPrefix, "/") == "" {
		return errors.New("consul: KV key prefix is required")
	}

	if c.Address == "" {
		return errors.New("consul: Consul address is required")
	}

	return nil
}

func (c *Config) key(name string) string {
	return strings.Trim(c.KeyPrefix, "/") + "/" + name
}
