// Package consul fetches iotf application credentials from Consul KV.
package consul

import (
	"context"
	"fmt"
	"strings"

	consulapi "github.com/hashicorp/consul/api"

	iotf "github.com/gojek/iotf-listener"
)

const (
	apiKeyName    = "api-key"
	authTokenName = "auth-token"
)

var _ iotf.CredentialFetcher = (*CredentialFetcher)(nil)

type kvGetter interface {
	Get(key string, q *consulapi.QueryOptions) (*consulapi.KVPair, *consulapi.QueryMeta, error)
}

// CredentialFetcher reads the API key and token from Consul on every call,
// so rotated credentials are picked up on the next connect.
type CredentialFetcher struct {
	config *Config
	kv     kvGetter
}

// NewCredentialFetcher creates a CredentialFetcher for config.
func NewCredentialFetcher(config *Config) (*CredentialFetcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cc := consulapi.DefaultConfig()
	cc.Address = config.Address
	cc.Token = config.Token

	if strings.HasPrefix(config.Address, "https://") {
		cc.Scheme = "https"
		cc.Address = strings.TrimPrefix(config.Address, "https://")
	} else {
		cc.Address = strings.TrimPrefix(config.Address, "http://")
	}

	client, err := consulapi.NewClient(cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &CredentialFetcher{config: config, kv: client.KV()}, nil
}

// Credentials implements iotf.CredentialFetcher.
func (f *CredentialFetcher) Credentials(ctx context.Context) (*iotf.Credential, error) {
	if _, ok := ctx.Deadline(); !ok && f.config.WaitTime > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, f.config.WaitTime)
		defer cancel()
	}

	apiKey, err := f.get(ctx, apiKeyName)
	if err != nil {
		return nil, err
	}

	token, err := f.get(ctx, authTokenName)
	if err != nil {
		return nil, err
	}

	return &iotf.Credential{APIKey: apiKey, AuthToken: token}, nil
}

func (f *CredentialFetcher) get(ctx context.Context, name string) (string, error) {
	key := f.config.key(name)

	pair, _, err := f.kv.Get(key, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if pair == nil {
		return "", fmt.Errorf("key %s not found", key)
	}

	v := strings.TrimSpace(string(pair.Value))
	if v == "" {
		return "", fmt.Errorf("key %s is empty", key)
	}

	return v, nil
}
