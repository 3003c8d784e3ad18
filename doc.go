/*
Package iotf contains an application client for the IoT platform's MQTT endpoint and a
Listener that keeps one such client subscribed to device events and device status.

An ApplicationClient authenticates as "a:<org>:<app id>" with an API key and token and
delivers every inbound message synchronously to the EventHandler or StatusHandler given
at construction, in the order the broker sent them.

Example:

	package main

	import (
		"context"
		"fmt"
		"os"
		"os/signal"
		"syscall"

		iotf "github.com/gojek/iotf-listener"
	)

	func main() {
		events := iotf.EventHandlerFuncs{
			OnEvent: func(_ context.Context, e *iotf.Event) {
				fmt.Printf("%s--%s\n", e.Source(), e.String())
			},
		}

		c, err := iotf.NewApplicationClient(events, iotf.StatusHandlerFuncs{},
			iotf.WithOrganization("myorg"),
			iotf.WithAPIKey("a-myorg-xxxxxxxxxx"),
			iotf.WithAuthToken("token"),
		)
		if err != nil {
			panic(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		l := iotf.NewListener(c, iotf.NewTopicFilter("sensor", "+"))
		if err := l.Run(ctx); err != nil {
			panic(err)
		}
	}
*/
package iotf // import "github.com/gojek/iotf-listener"
