package iotf

import (
	"encoding/json"
	"net/http"
	"net/url"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gojekfarm/xtools/generic/slice"
)

// ClientInfo is a point in time description of an ApplicationClient.
type ClientInfo struct {
	OrgID         string   `json:"org_id"`
	AppID         string   `json:"app_id"`
	ClientID      string   `json:"client_id"`
	Brokers       []string `json:"brokers"`
	Subscriptions []string `json:"subscriptions"`
	CleanSession  bool     `json:"clean_session"`
	AutoReconnect bool     `json:"auto_reconnect"`
	Connected     bool     `json:"connected"`
}

// Info describes the client. Brokers is empty until Start has been called.
func (c *ApplicationClient) Info() ClientInfo {
	ci := ClientInfo{
		OrgID:         c.options.orgID,
		AppID:         c.options.appID,
		ClientID:      c.options.clientID(),
		Brokers:       []string{},
		Subscriptions: c.subscribedTopics(),
		CleanSession:  c.options.cleanSession,
		AutoReconnect: c.options.autoReconnect,
	}

	_ = c.execute(func(cc mqtt.Client) error {
		opts := cc.OptionsReader()
		ci.Brokers = slice.Map(opts.Servers(), func(u *url.URL) string { return u.String() })
		ci.Connected = cc.IsConnectionOpen()

		return nil
	})

	return ci
}

// TelemetryHandler returns a http.Handler that exposes the client information as JSON.
func (c *ApplicationClient) TelemetryHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(c.Info())
	})
}
