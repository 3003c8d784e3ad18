package iotf

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gojek/iotf-listener/metrics"
)

type recordingCollector struct {
	mu      sync.Mutex
	results []metrics.Result
}

func (r *recordingCollector) Update(res metrics.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res.RunDuration = 0
	r.results = append(r.results, res)
}

func (r *recordingCollector) all() []metrics.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]metrics.Result(nil), r.results...)
}

func TestReportEvents(t *testing.T) {
	mc := &mockClient{}
	mc.On("Connect").Return(newDoneToken(nil))
	mc.On("Subscribe", AllDevices.StatusTopic(), byte(QOSZero), mock.Anything).Return(newPendingToken())
	mc.On("Subscribe", AllDevices.EventTopic(), byte(QOSZero), mock.Anything).Return(newDoneToken(errors.New("refused")))

	newClientFunc.Store(func(_ *mqtt.ClientOptions) mqtt.Client { return mc })
	t.Cleanup(func() { newClientFunc.Store(mqtt.NewClient) })

	rc := &recordingCollector{}

	c, err := NewApplicationClient(EventHandlerFuncs{}, StatusHandlerFuncs{},
		append([]ClientOption{WithMetrics(rc), WithWriteTimeout(10 * time.Millisecond)}, defOpts...)...)
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.SubscribeToDeviceStatus(context.Background(), AllDevices), ErrSubscribeTimeout)
	assert.Error(t, c.SubscribeToDeviceEvents(context.Background(), AllDevices))
	c.dispatch(context.Background(), Message{Topic: "iot-2/type/sensor/id/s1/evt/temp/fmt/json"})
	c.dispatch(context.Background(), Message{Topic: "iot-2/app/app1/mon"})
	c.dispatch(context.Background(), Message{Topic: "not/a/platform/topic"})

	assert.Equal(t, []metrics.Result{
		{OpType: metrics.ConnectOp, Attempts: 1, Successes: 1},
		{OpType: metrics.SubscribeOp, Attempts: 1, Errors: 1, Timeouts: 1},
		{OpType: metrics.SubscribeOp, Attempts: 1, Errors: 1},
		{OpType: metrics.EventCallbackOp, Attempts: 1, Successes: 1},
		{OpType: metrics.StatusCallbackOp, Attempts: 1, Successes: 1},
	}, rc.all())
}

func TestWithMetrics_IgnoresNil(t *testing.T) {
	o := defaultClientOptions()
	WithMetrics(nil).apply(o)

	assert.Equal(t, metrics.Noop{}, o.collector)
}

func Test_isTimeout(t *testing.T) {
	assert.True(t, isTimeout(ErrConnectTimeout))
	assert.True(t, isTimeout(context.DeadlineExceeded))
	assert.False(t, isTimeout(context.Canceled))
	assert.False(t, isTimeout(errors.New("other")))
}
