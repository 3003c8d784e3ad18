package iotf

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gojek/iotf-listener/metrics"
)

// SubscribeToDeviceEvents requests every event published by devices matching f.
func (c *ApplicationClient) SubscribeToDeviceEvents(ctx context.Context, f TopicFilter) error {
	return c.subscribe(ctx, f.EventTopic())
}

// SubscribeToDeviceCommands requests every command sent to devices matching f.
func (c *ApplicationClient) SubscribeToDeviceCommands(ctx context.Context, f TopicFilter) error {
	return c.subscribe(ctx, f.CommandTopic())
}

// SubscribeToDeviceStatus requests presence changes of devices matching f.
func (c *ApplicationClient) SubscribeToDeviceStatus(ctx context.Context, f TopicFilter) error {
	return c.subscribe(ctx, f.StatusTopic())
}

// SubscribeToApplicationStatus requests presence changes of the application appID,
// or of every application when appID is Wildcard.
func (c *ApplicationClient) SubscribeToApplicationStatus(ctx context.Context, appID string) error {
	return c.subscribe(ctx, ApplicationStatusTopic(appID))
}

func (c *ApplicationClient) subscribe(ctx context.Context, topic string) (err error) {
	ew := &eventWrapper{types: attemptEvent}
	begin := time.Now()

	defer func() {
		ew.record(err)
		c.reportEvents(metrics.SubscribeOp, ew, time.Since(begin))
	}()

	err = c.execute(func(cc mqtt.Client) error {
		return c.handleToken(ctx, cc.Subscribe(topic, byte(QOSZero), callbackWrapper(c)), ErrSubscribeTimeout)
	})
	if err != nil {
		return err
	}

	c.subMu.Lock()
	c.subscriptions.Add(topic)
	c.subMu.Unlock()

	c.options.logger.Info(ctx, "subscribed", map[string]any{"topic": topic})

	return nil
}

func callbackWrapper(c *ApplicationClient) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		c.dispatch(context.Background(), Message{
			Topic:      m.Topic(),
			QoS:        QOSLevel(m.Qos()),
			Retained:   m.Retained(),
			Duplicate:  m.Duplicate(),
			Payload:    m.Payload(),
			newDecoder: c.options.newDecoder,
		})
	}
}

// dispatch hands m to the sink of its category on the caller's goroutine.
func (c *ApplicationClient) dispatch(ctx context.Context, m Message) {
	in, err := parseTopic(m)
	if err != nil {
		c.options.logger.Warn(ctx, "dropping message", map[string]any{"topic": m.Topic, "error": err.Error()})

		return
	}

	begin := time.Now()
	op := metrics.EventCallbackOp

	switch msg := in.(type) {
	case *Event:
		c.events.HandleEvent(ctx, msg)
	case *Command:
		c.events.HandleCommand(ctx, msg)
	case *DeviceStatus:
		op = metrics.StatusCallbackOp
		c.status.HandleDeviceStatus(ctx, msg)
	case *ApplicationStatus:
		op = metrics.StatusCallbackOp
		c.status.HandleApplicationStatus(ctx, msg)
	}

	c.reportEvents(op, &eventWrapper{types: attemptEvent | successEvent}, time.Since(begin))
}
