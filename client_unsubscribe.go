package iotf

import (
	"context"
	"sort"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gojek/iotf-listener/metrics"
)

// Unsubscribe removes subscriptions previously made through the client.
func (c *ApplicationClient) Unsubscribe(ctx context.Context, topics ...string) (err error) {
	if len(topics) == 0 {
		return nil
	}

	ew := &eventWrapper{types: attemptEvent}
	begin := time.Now()

	defer func() {
		ew.record(err)
		c.reportEvents(metrics.UnsubscribeOp, ew, time.Since(begin))
	}()

	err = c.execute(func(cc mqtt.Client) error {
		return c.handleToken(ctx, cc.Unsubscribe(topics...), ErrUnsubscribeTimeout)
	})
	if err != nil {
		return err
	}

	c.subMu.Lock()
	for _, topic := range topics {
		delete(c.subscriptions, topic)
	}
	c.subMu.Unlock()

	return nil
}

func (c *ApplicationClient) unsubscribeAll(ctx context.Context) error {
	topics := c.subscribedTopics()
	if len(topics) == 0 {
		return nil
	}

	return c.Unsubscribe(ctx, topics...)
}

func (c *ApplicationClient) subscribedTopics() []string {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	topics := make([]string, 0, len(c.subscriptions))
	for topic := range c.subscriptions {
		topics = append(topics, topic)
	}

	sort.Strings(topics)

	return topics
}
