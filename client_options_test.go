package iotf

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ClientOptionSuite struct {
	suite.Suite
}

func TestClientOptionSuite(t *testing.T) {
	suite.Run(t, new(ClientOptionSuite))
}

func (s *ClientOptionSuite) Test_apply() {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS13}
	onLost := func(error) {}

	tests := []struct {
		name   string
		option ClientOption
		want   *clientOptions
	}{
		{
			name:   "WithOrganization",
			option: WithOrganization("orgA"),
			want:   &clientOptions{orgID: "orgA"},
		},
		{
			name:   "WithAppID",
			option: WithAppID("app1"),
			want:   &clientOptions{appID: "app1"},
		},
		{
			name:   "WithAPIKey",
			option: WithAPIKey("key"),
			want:   &clientOptions{apiKey: "key"},
		},
		{
			name:   "WithAuthToken",
			option: WithAuthToken("token"),
			want:   &clientOptions{authToken: "token"},
		},
		{
			name:   "WithAuthMethod",
			option: WithAuthMethod("apikey"),
			want:   &clientOptions{authMethod: "apikey"},
		},
		{
			name:   "WithDomain",
			option: WithDomain("example.com"),
			want:   &clientOptions{domain: "example.com"},
		},
		{
			name:   "WithPort",
			option: WithPort(443),
			want:   &clientOptions{port: 443},
		},
		{
			name:   "WithAddress",
			option: WithAddress("localhost", 1883),
			want:   &clientOptions{brokerAddress: "localhost:1883", port: 1883},
		},
		{
			name:   "WithTLS",
			option: WithTLS(tlsConfig),
			want:   &clientOptions{tlsConfig: tlsConfig},
		},
		{
			name:   "WithCleanSession",
			option: WithCleanSession(true),
			want:   &clientOptions{cleanSession: true},
		},
		{
			name:   "WithSharedSubscription",
			option: WithSharedSubscription(true),
			want:   &clientOptions{sharedSubscription: true},
		},
		{
			name:   "WithAutoReconnect",
			option: WithAutoReconnect(true),
			want:   &clientOptions{autoReconnect: true},
		},
		{
			name:   "WithKeepAlive",
			option: WithKeepAlive(time.Second),
			want:   &clientOptions{keepAlive: time.Second},
		},
		{
			name:   "WithConnectTimeout",
			option: WithConnectTimeout(time.Second),
			want:   &clientOptions{connectTimeout: time.Second},
		},
		{
			name:   "WithWriteTimeout",
			option: WithWriteTimeout(time.Second),
			want:   &clientOptions{writeTimeout: time.Second},
		},
		{
			name:   "WithGracefulShutdownPeriod",
			option: WithGracefulShutdownPeriod(time.Second),
			want:   &clientOptions{gracefulShutdownPeriod: time.Second},
		},
		{
			name:   "WithCredentialFetchTimeout",
			option: WithCredentialFetchTimeout(time.Second),
			want:   &clientOptions{credentialFetchTimeout: time.Second},
		},
	}

	for _, t := range tests {
		s.Run(t.name, func() {
			o := &clientOptions{}
			t.option.apply(o)
			s.Equal(t.want, o)
		})
	}

	s.Run("WithOnConnectionLost", func() {
		o := &clientOptions{}
		WithOnConnectionLost(onLost).apply(o)
		s.NotNil(o.onConnectionLostHandler)
	})
}

func (s *ClientOptionSuite) TestBroker() {
	tests := []struct {
		name        string
		opts        []ClientOption
		wantAddress string
		wantSecure  bool
		wantID      string
	}{
		{
			name:        "Default",
			opts:        []ClientOption{WithOrganization("orgA"), WithAppID("app1")},
			wantAddress: "orgA.messaging.internetofthings.ibmcloud.com:8883",
			wantSecure:  true,
			wantID:      "a:orgA:app1",
		},
		{
			name:        "Quickstart",
			opts:        []ClientOption{WithOrganization(QuickstartOrg), WithAppID("app1")},
			wantAddress: "quickstart.messaging.internetofthings.ibmcloud.com:1883",
			wantID:      "a:quickstart:app1",
		},
		{
			name:        "PlainPort",
			opts:        []ClientOption{WithOrganization("orgA"), WithAppID("app1"), WithPort(1883)},
			wantAddress: "orgA.messaging.internetofthings.ibmcloud.com:1883",
			wantID:      "a:orgA:app1",
		},
		{
			name:        "Shared",
			opts:        []ClientOption{WithOrganization("orgA"), WithAppID("app1"), WithSharedSubscription(true)},
			wantAddress: "orgA.messaging.internetofthings.ibmcloud.com:8883",
			wantSecure:  true,
			wantID:      "A:orgA:app1",
		},
	}

	for _, t := range tests {
		s.Run(t.name, func() {
			o := defaultClientOptions()
			for _, opt := range t.opts {
				opt.apply(o)
			}

			s.Equal(t.wantAddress, o.address())
			s.Equal(t.wantSecure, o.secure())
			s.Equal(t.wantID, o.clientID())
		})
	}
}

func (s *ClientOptionSuite) TestCredentialFetcher() {
	f := newMockCredentialFetcher(s.T())

	o := &clientOptions{}
	WithCredentialFetcher(f).apply(o)

	s.Equal(f, o.credentialFetcher)
}
