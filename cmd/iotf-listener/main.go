// Command iotf-listener prints the events and presence changes of platform devices
// until Enter is pressed or the process is interrupted.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	iotf "github.com/gojek/iotf-listener"
	"github.com/gojek/iotf-listener/config"
	"github.com/gojek/iotf-listener/consul"
	"github.com/gojek/iotf-listener/metrics"
	"github.com/gojek/iotf-listener/zaplog"
)

const appName = "iotf-listener"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.StringP("config", "c", "", "properties file to read instead of the embedded default")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)

		return 1
	}

	zl := zaplog.Build(cfg.ZapConfig())
	defer func() { _ = zl.Sync() }()

	logger := zaplog.New(zl)
	iotf.UseTransportLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "configuration loaded", map[string]any{
		"source":       cfg.Source,
		"organization": cfg.Organization,
		"filter":       cfg.TopicFilter().String(),
	})

	if err := listen(ctx, cfg, logger, stdin, newConsoleSink(stdout)); err != nil {
		logger.Error(ctx, err, nil)
		fmt.Fprintln(stderr, err)

		return 1
	}

	return 0
}

func listen(ctx context.Context, cfg *config.Config, logger iotf.Logger, stdin io.Reader, out *consoleSink) error {
	opts := append(cfg.ClientOptions(), iotf.WithLogger(logger))

	if cc := cfg.ConsulConfig(); cc != nil {
		f, err := consul.NewCredentialFetcher(cc)
		if err != nil {
			return fmt.Errorf("consul: %w", err)
		}

		opts = append(opts, iotf.WithCredentialFetcher(f))
	}

	var reg *prometheus.Registry

	if cfg.MetricsAddress != "" {
		reg = prometheus.NewRegistry()

		m := metrics.NewPrometheus()
		if err := m.AddToRegistry(reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}

		opts = append(opts, iotf.WithMetrics(m))
	}

	client, err := iotf.NewApplicationClient(out, out, opts...)
	if err != nil {
		return err
	}

	if reg != nil {
		stopServer := startHTTPServer(cfg.MetricsAddress, newRouter(reg, client.TelemetryHandler()), logger)
		defer stopServer()
	}

	out.printf(" * Organization: %s\n", client.OrgID())

	l := iotf.NewListener(client, cfg.TopicFilter(), iotf.WithListenerLogger(logger))

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	select {
	case <-l.Ready():
	case err := <-errCh:
		if ctx.Err() != nil {
			return nil
		}

		return err
	}

	out.printf("Connected successfully - Your App ID is %s\n\n(Press <enter> to disconnect)\n", client.AppID())

	var (
		runErr error
		ended  bool
	)

	select {
	case <-waitForEnter(stdin):
	case <-ctx.Done():
	case runErr = <-errCh:
		ended = true
	}

	out.printf("Closing connection to the IoT platform\n")
	l.Stop()

	if !ended {
		runErr = <-errCh
	}

	<-l.Done()

	out.printf("Thanks for using the application\nExiting...\n")

	return runErr
}

// waitForEnter fires on the first line read from r. A closed or failing
// stdin never fires, so a detached process runs until it is signalled.
func waitForEnter(r io.Reader) <-chan struct{} {
	ch := make(chan struct{})

	go func() {
		if _, err := bufio.NewReader(r).ReadString('\n'); err == nil {
			close(ch)
		}
	}()

	return ch
}
