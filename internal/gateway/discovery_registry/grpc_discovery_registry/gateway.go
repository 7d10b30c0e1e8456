package grpc_discovery_registry

import (
	"context"
	"fmt"
	"time"

	"github.com/horockey/regclient/internal/gateway/discovery_registry"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

var _ discovery_registry.Gateway = &grpcDiscoveryRegistry{}

type grpcDiscoveryRegistry struct {
	callTimeout time.Duration
	dialOpts    []grpc.DialOption
	metrics     *metrics
	logger      zerolog.Logger
}

func New(
	callTimeout time.Duration,
	logger zerolog.Logger,
	dialOpts ...grpc.DialOption,
) *grpcDiscoveryRegistry {
	return &grpcDiscoveryRegistry{
		callTimeout: callTimeout,
		dialOpts:    dialOpts,
		metrics:     newMetrics(),
		logger:      logger,
	}
}

func (gw *grpcDiscoveryRegistry) Metrics() []prometheus.Collector {
	return gw.metrics.list()
}

func (gw *grpcDiscoveryRegistry) RegisterService(
	ctx context.Context,
	addr string,
	entry model.RegistryEntry,
) (res model.RegistryEntry, resErr error) {
	gw.logger.Debug().Str("registry", addr).Str("name", entry.Name).Msg("registering service")
	defer gw.observe(time.Now(), &resErr)

	out := rpc.RegistryEntry{}
	if err := rpc.InvokeOnce(
		ctx,
		addr,
		gw.callTimeout,
		rpc.DiscoveryRegisterServiceMethod,
		rpc.NewRegistryEntry(entry),
		&out,
		gw.dialOpts...,
	); err != nil {
		return model.RegistryEntry{}, fmt.Errorf("invoking register: %w", err)
	}

	return rpc.RegistryEntryToModel(&out), nil
}

func (gw *grpcDiscoveryRegistry) Discover(
	ctx context.Context,
	addr string,
	name string,
) (res model.RegistryEntry, resErr error) {
	gw.logger.Debug().Str("registry", addr).Str("name", name).Msg("discovering service")
	defer gw.observe(time.Now(), &resErr)

	out := rpc.RegistryEntry{}
	err := rpc.InvokeOnce(
		ctx,
		addr,
		gw.callTimeout,
		rpc.DiscoveryDiscoverMethod,
		&rpc.RegistryEntry{Name: name},
		&out,
		gw.dialOpts...,
	)
	switch {
	case err == nil:
	case rpc.IsNotFound(err):
		gw.metrics.notFoundCnt.Inc()
		return model.RegistryEntry{}, model.ServiceNotFoundError{Name: name}
	default:
		return model.RegistryEntry{}, fmt.Errorf("invoking discover: %w", err)
	}

	res = rpc.RegistryEntryToModel(&out)
	if !res.Addressable() {
		gw.metrics.notFoundCnt.Inc()
		return model.RegistryEntry{}, model.ServiceNotFoundError{Name: name}
	}

	return res, nil
}

func (gw *grpcDiscoveryRegistry) observe(ts time.Time, resErr *error) {
	gw.metrics.requestsCnt.Inc()
	gw.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

	switch *resErr {
	case nil:
		gw.metrics.successProcessCnt.Inc()
	default:
		gw.metrics.errProcessCnt.Inc()
	}
}
