package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/horockey/regclient/internal/gateway/discovery_registry"
	"github.com/horockey/regclient/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Processor registers the current process and resolves peers against the
// registry yielded by its address source. It caches nothing itself.
type Processor struct {
	src     model.AddressSource
	gw      discovery_registry.Gateway
	Logger  zerolog.Logger
	metrics *metrics
}

func New(
	src model.AddressSource,
	gw discovery_registry.Gateway,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		src:     src,
		gw:      gw,
		Logger:  logger,
		metrics: newMetrics(),
	}
}

func (pr *Processor) Metrics() []prometheus.Collector {
	return pr.metrics.list()
}

// Register announces name/ip/identifier and returns the entry assigned by
// the registry. It is never retried here.
func (pr *Processor) Register(
	ctx context.Context,
	name string,
	ip string,
	identifier string,
) (res model.RegistryEntry, resErr error) {
	defer func(ts time.Time) {
		pr.metrics.handleTimeHist.WithLabelValues("register").Observe(float64(time.Since(ts)))
		switch resErr {
		case nil:
			pr.metrics.registrationsCnt.WithLabelValues("ok").Inc()
		default:
			pr.metrics.registrationsCnt.WithLabelValues("error").Inc()
		}
	}(time.Now())

	pr.Logger.Info().Str("name", name).Str("ip", ip).Str("identifier", identifier).Msg("registering")

	ep, err := pr.src.Address(ctx)
	if err != nil {
		return model.RegistryEntry{}, model.RegistrationError{
			Name: name,
			Err:  fmt.Errorf("getting registry address: %w", err),
		}
	}

	entry, err := pr.gw.RegisterService(ctx, ep.Addr(), model.RegistryEntry{
		Name:       name,
		IP:         ip,
		Identifier: identifier,
	})
	if err != nil {
		pr.invalidate(ctx, ep)
		return model.RegistryEntry{}, model.RegistrationError{
			Name: name,
			Err:  fmt.Errorf("registering in %s: %w", ep.Addr(), err),
		}
	}
	if !entry.Addressable() {
		return model.RegistryEntry{}, model.RegistrationError{
			Name: name,
			Err:  fmt.Errorf("registry returned unusable entry (ip=%q, port=%d)", entry.IP, entry.Port),
		}
	}

	pr.Logger.Info().Str("name", entry.Name).Str("addr", entry.Addr()).Msg("registered")
	return entry, nil
}

// Resolve returns found=false with nil error when the registry does not
// know name. Any other failure is a model.ResolutionError and invalidates
// the registry address it went through.
func (pr *Processor) Resolve(
	ctx context.Context,
	name string,
) (res model.RegistryEntry, found bool, resErr error) {
	defer func(ts time.Time) {
		pr.metrics.handleTimeHist.WithLabelValues("resolve").Observe(float64(time.Since(ts)))
		switch {
		case resErr != nil:
			pr.metrics.resolutionsCnt.WithLabelValues("error").Inc()
		case !found:
			pr.metrics.resolutionsCnt.WithLabelValues("not_found").Inc()
		default:
			pr.metrics.resolutionsCnt.WithLabelValues("ok").Inc()
		}
	}(time.Now())

	pr.Logger.Debug().Str("action", "resolve").Str("name", name).Send()

	ep, err := pr.src.Address(ctx)
	if err != nil {
		return model.RegistryEntry{}, false, model.ResolutionError{
			Name: name,
			Err:  fmt.Errorf("getting registry address: %w", err),
		}
	}

	entry, err := pr.gw.Discover(ctx, ep.Addr(), name)
	switch {
	case err == nil:
		return entry, true, nil
	case errors.As(err, &model.ServiceNotFoundError{}):
		return model.RegistryEntry{}, false, nil
	default:
		pr.invalidate(ctx, ep)
		return model.RegistryEntry{}, false, model.ResolutionError{
			Name: name,
			Err:  fmt.Errorf("discovering in %s: %w", ep.Addr(), err),
		}
	}
}

// invalidate is a no-op once ctx is done.
func (pr *Processor) invalidate(ctx context.Context, ep model.DiscoveryEndpoint) {
	if ctx.Err() != nil {
		return
	}
	pr.src.Invalidate(ep)
}
