package iotf

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationClient_TelemetryHandler(t *testing.T) {
	c, err := NewApplicationClient(EventHandlerFuncs{}, StatusHandlerFuncs{}, defOpts...)
	require.NoError(t, err)

	t.Run("NotStarted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c.TelemetryHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/telemetry", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{
			"org_id": "orgA",
			"app_id": "app1",
			"client_id": "a:orgA:app1",
			"brokers": [],
			"subscriptions": [],
			"clean_session": true,
			"auto_reconnect": false,
			"connected": false
		}`, rec.Body.String())
	})

	t.Run("Started", func(t *testing.T) {
		mc := &mockClient{}
		mc.On("OptionsReader").Return(mqtt.NewOptionsReader(toClientOptions(c.options, &Credential{})))
		mc.On("IsConnectionOpen").Return(true)

		c.mqttClient = mc
		c.subscriptions.Add(AllDevices.StatusTopic())

		rec := httptest.NewRecorder()
		c.TelemetryHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/telemetry", nil))

		var got ClientInfo
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

		assert.Equal(t, ClientInfo{
			OrgID:         "orgA",
			AppID:         "app1",
			ClientID:      "a:orgA:app1",
			Brokers:       []string{"ssl://orgA.messaging.internetofthings.ibmcloud.com:8883"},
			Subscriptions: []string{"iot-2/type/+/id/+/mon"},
			CleanSession:  true,
			Connected:     true,
		}, got)
	})
}
