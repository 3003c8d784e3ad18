package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iotf "github.com/gojek/iotf-listener"
	"github.com/gojek/iotf-listener/metrics"
)

func TestRun_Arguments(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.properties")

	broken := filepath.Join(t.TempDir(), "broken.properties")
	require.NoError(t, os.WriteFile(broken, []byte("Organization-ID=orgA\nPort=none\n"), 0o600))

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr []string
	}{
		{
			name:       "UnknownFlag",
			args:       []string{"--bogus"},
			wantCode:   1,
			wantStderr: []string{"unknown flag: --bogus", "--config"},
		},
		{
			name:       "Help",
			args:       []string{"-h"},
			wantCode:   0,
			wantStderr: []string{"--config"},
		},
		{
			name:       "MissingConfig",
			args:       []string{"-c", missing},
			wantCode:   1,
			wantStderr: []string{"not able to read the configuration", missing},
		},
		{
			name:       "InvalidConfig",
			args:       []string{"--config", broken},
			wantCode:   1,
			wantStderr: []string{"Port must be a port number", "API-Key is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(tt.args, strings.NewReader(""), &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, stdout.String())

			for _, want := range tt.wantStderr {
				assert.Contains(t, stderr.String(), want)
			}
		})
	}
}

func TestConsoleSink(t *testing.T) {
	var out bytes.Buffer

	s := newConsoleSink(&out)
	ctx := context.Background()

	f := iotf.NewTopicFilter("sensor", "+")
	assert.Equal(t, "iot-2/type/sensor/id/+/evt/+/fmt/+", f.EventTopic())

	s.HandleEvent(ctx, &iotf.Event{Message: iotf.Message{Payload: []byte("23.5")}, DeviceType: "sensor", DeviceID: "s1"})
	s.HandleCommand(ctx, &iotf.Command{Message: iotf.Message{Payload: []byte("reboot")}, DeviceID: "s1"})
	s.HandleDeviceStatus(ctx, &iotf.DeviceStatus{Message: iotf.Message{Payload: []byte(`{"Action":"Connect"}`)}, DeviceID: "s1"})
	s.HandleApplicationStatus(ctx, &iotf.ApplicationStatus{Message: iotf.Message{Payload: []byte(`{"Action":"Disconnect"}`)}, AppID: "app1"})

	assert.Equal(t, "s1--23.5\n{\"Action\":\"Connect\"}\n{\"Action\":\"Disconnect\"}\n", out.String())
}

func TestWaitForEnter(t *testing.T) {
	select {
	case <-waitForEnter(strings.NewReader("\n")):
	case <-time.After(time.Second):
		t.Fatal("enter not detected")
	}

	select {
	case <-waitForEnter(strings.NewReader("")):
		t.Fatal("EOF must not count as enter")
	case <-time.After(50 * time.Millisecond):
	}

	pr, pw := io.Pipe()
	defer pw.Close()

	ch := waitForEnter(pr)

	_, err := pw.Write([]byte("bye\n"))
	require.NoError(t, err)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("enter not detected")
	}
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus()
	require.NoError(t, m.AddToRegistry(reg))
	m.Update(metrics.Result{OpType: metrics.ConnectOp, Attempts: 1, Successes: 1})

	c, err := iotf.NewApplicationClient(iotf.EventHandlerFuncs{}, iotf.StatusHandlerFuncs{},
		iotf.WithOrganization(iotf.QuickstartOrg), iotf.WithAppID("app1"))
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(reg, c.TelemetryHandler()))
	defer srv.Close()

	tests := []struct {
		path     string
		wantCode int
		want     string
	}{
		{path: "/metrics", wantCode: http.StatusOK, want: "iotf_connect_attempts"},
		{path: "/telemetry", wantCode: http.StatusOK, want: `"client_id":"a:quickstart:app1"`},
		{path: "/unknown", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Contains(t, string(body), tt.want)
		})
	}
}
