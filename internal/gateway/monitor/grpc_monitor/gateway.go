package grpc_monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/horockey/regclient/internal/gateway/monitor"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ monitor.Gateway = &grpcMonitor{}

type grpcMonitor struct {
	callTimeout time.Duration
	dialOpts    []grpc.DialOption
	metrics     *metrics
	logger      zerolog.Logger
}

func New(
	callTimeout time.Duration,
	logger zerolog.Logger,
	dialOpts ...grpc.DialOption,
) *grpcMonitor {
	return &grpcMonitor{
		callTimeout: callTimeout,
		dialOpts:    dialOpts,
		metrics:     newMetrics(),
		logger:      logger,
	}
}

func (gw *grpcMonitor) Metrics() []prometheus.Collector {
	return gw.metrics.list()
}

func (gw *grpcMonitor) ReceiveHeartbeat(ctx context.Context, addr string, entry model.RegistryEntry) error {
	gw.logger.Debug().Str("monitor", addr).Msg("sending heartbeat")
	return gw.invoke(ctx, addr, rpc.MonitorReceiveHeartbeatMethod, rpc.NewRegistryEntry(entry))
}

func (gw *grpcMonitor) WriteMessageLog(
	ctx context.Context,
	addr string,
	entry model.RegistryEntry,
	message string,
) error {
	return gw.invoke(ctx, addr, rpc.MonitorWriteMessageLogMethod, &rpc.MessageLog{
		Entry:   rpc.NewRegistryEntry(entry),
		Message: message,
	})
}

func (gw *grpcMonitor) WriteValueLog(
	ctx context.Context,
	addr string,
	entry model.RegistryEntry,
	value float32,
) error {
	return gw.invoke(ctx, addr, rpc.MonitorWriteValueLogMethod, &rpc.ValueLog{
		Entry: rpc.NewRegistryEntry(entry),
		Value: value,
	})
}

func (gw *grpcMonitor) invoke(ctx context.Context, addr string, method string, req any) (resErr error) {
	defer func(ts time.Time) {
		gw.metrics.requestsCnt.Inc()
		gw.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			gw.metrics.successProcessCnt.Inc()
		default:
			gw.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	if err := rpc.InvokeOnce(
		ctx,
		addr,
		gw.callTimeout,
		method,
		req,
		&emptypb.Empty{},
		gw.dialOpts...,
	); err != nil {
		return fmt.Errorf("invoking monitor: %w", err)
	}

	return nil
}
