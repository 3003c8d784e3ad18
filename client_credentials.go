package iotf

import (
	"context"
	"time"
)

// Credential is the <api key, auth token> pair an application connects with.
type Credential struct {
	APIKey    string
	AuthToken string
}

// CredentialFetcher is an interface that allows to fetch credentials for a client
// right before it connects, instead of reading them from configuration.
type CredentialFetcher interface {
	Credentials(context.Context) (*Credential, error)
}

// WithCredentialFetcher sets the specified CredentialFetcher.
func WithCredentialFetcher(fetcher CredentialFetcher) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.credentialFetcher = fetcher
	})
}

// WithCredentialFetchTimeout bounds a single CredentialFetcher call. Default 10 seconds.
func WithCredentialFetchTimeout(duration time.Duration) ClientOption {
	return optionFunc(func(o *clientOptions) {
		o.credentialFetchTimeout = duration
	})
}

func (c *ApplicationClient) credentials(ctx context.Context) (*Credential, error) {
	if c.options.credentialFetcher == nil {
		return &Credential{APIKey: c.options.apiKey, AuthToken: c.options.authToken}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.options.credentialFetchTimeout)
	defer cancel()

	return c.options.credentialFetcher.Credentials(ctx)
}
