// Command regsidecar registers a service that does not embed the client
// and keeps its registration alive until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/horockey/regclient"
	"github.com/rs/zerolog"
)

type sidecarHost struct {
	name string
}

func (h sidecarHost) Name() string { return h.name }

func (sidecarHost) RPCHandlers() []regclient.Handler { return nil }

func (sidecarHost) RunLocal(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().
		Timestamp().
		Str("scope", "regsidecar").
		Logger()

	if err := run(logger); err != nil {
		logger.Error().Err(err).Send()
		os.Exit(1)
	}
}

func run(logger zerolog.Logger) error {
	cfg, err := LoadConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger = logger.Level(lvl)

	cl, err := regclient.NewClient(sidecarHost{name: cfg.ServiceName}, cfg.ClientOptions(logger)...)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Registry.Bootstrap {
	case "":
		err = cl.Serve(ctx, cfg.Registry.Host, cfg.Registry.Port)
	default:
		err = cl.ServeBootstrap(ctx, cfg.Registry.Bootstrap)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info().Msg("stopped")
	return nil
}
