package iotf

import (
	"errors"
)

var (
	ErrConnectTimeout       = errors.New("client timed out while trying to connect to the platform")
	ErrSubscribeTimeout     = errors.New("subscribe timeout")
	ErrUnsubscribeTimeout   = errors.New("unsubscribe timeout")
	ErrClientNotInitialized = errors.New("iotf: client is not started")
	ErrNilHandler           = errors.New("iotf: event and status handlers are required")
	ErrMissingOrganization  = errors.New("iotf: organization id is required")
	ErrMissingCredentials   = errors.New("iotf: api key and auth token are required outside quickstart")
	ErrUnknownTopic         = errors.New("iotf: topic does not match any platform topic layout")
	ErrListenerStarted      = errors.New("iotf: listener can only be run once")
)
