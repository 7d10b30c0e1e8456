package monitor_logger

import (
	"context"
	"fmt"

	"github.com/horockey/regclient/internal/gateway/monitor"
	"github.com/horockey/regclient/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// MonitorLogger forwards log records to the monitor service.
// The monitor address is resolved on every call. Every failure is written
// to the diagnostic logger before being returned.
type MonitorLogger struct {
	monitorName string
	resolver    model.Resolver
	gw          monitor.Gateway
	entry       model.EntryFunc
	logger      zerolog.Logger
	metrics     *metrics
}

func New(
	monitorName string,
	resolver model.Resolver,
	gw monitor.Gateway,
	entry model.EntryFunc,
	logger zerolog.Logger,
) *MonitorLogger {
	return &MonitorLogger{
		monitorName: monitorName,
		resolver:    resolver,
		gw:          gw,
		entry:       entry,
		logger:      logger,
		metrics:     newMetrics(),
	}
}

func (ml *MonitorLogger) Metrics() []prometheus.Collector {
	return ml.metrics.list()
}

func (ml *MonitorLogger) LogMessage(ctx context.Context, text string) error {
	return ml.send(ctx, "message", func(ctx context.Context, addr string, entry model.RegistryEntry) error {
		return ml.gw.WriteMessageLog(ctx, addr, entry, text)
	})
}

func (ml *MonitorLogger) LogValue(ctx context.Context, value float32) error {
	return ml.send(ctx, "value", func(ctx context.Context, addr string, entry model.RegistryEntry) error {
		return ml.gw.WriteValueLog(ctx, addr, entry, value)
	})
}

func (ml *MonitorLogger) send(
	ctx context.Context,
	kind string,
	write func(ctx context.Context, addr string, entry model.RegistryEntry) error,
) (resErr error) {
	defer func() {
		switch resErr {
		case nil:
			ml.metrics.sentCnt.WithLabelValues(kind).Inc()
		default:
			ml.metrics.droppedCnt.WithLabelValues(kind).Inc()
			ml.logger.
				Error().
				Err(resErr).
				Str("kind", kind).
				Msg("monitor log dropped")
		}
	}()

	entry, ok := ml.entry()
	if !ok {
		return model.ErrNotRegistered
	}

	mon, found, err := ml.resolver.Resolve(ctx, ml.monitorName)
	if err != nil {
		return fmt.Errorf("resolving monitor: %w", err)
	}
	if !found {
		return model.ServiceNotFoundError{Name: ml.monitorName}
	}

	if err := write(ctx, mon.Addr(), entry); err != nil {
		return fmt.Errorf("writing %s log: %w", kind, err)
	}

	return nil
}
