package endpoint_cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/horockey/regclient/internal/gateway/bootstrap"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ model.AddressSource = &Cache{}

// Cache resolves the discovery registry address through the bootstrap
// lookup and keeps it until a failure through it is reported.
type Cache struct {
	bootstrapAddr string
	gw            bootstrap.Gateway
	repo          discovery_endpoint.Repository
	backoff       time.Duration
	clock         clock.Clock
	logger        zerolog.Logger
	metrics       *metrics

	// one-slot semaphore held across the whole read-check-bootstrap
	// sequence; acquired with respect to ctx
	sem chan struct{}
	// guards repo reads and writes only, never held during a lookup
	mu sync.Mutex
}

func New(
	bootstrapAddr string,
	gw bootstrap.Gateway,
	repo discovery_endpoint.Repository,
	backoff time.Duration,
	clk clock.Clock,
	logger zerolog.Logger,
) *Cache {
	return &Cache{
		bootstrapAddr: bootstrapAddr,
		gw:            gw,
		repo:          repo,
		backoff:       backoff,
		clock:         clk,
		logger:        logger,
		metrics:       newMetrics(),
		sem:           make(chan struct{}, 1),
	}
}

func (c *Cache) Metrics() []prometheus.Collector {
	return c.metrics.list()
}

// Address returns the cached endpoint if valid, otherwise blocks retrying
// the bootstrap lookup every backoff until it succeeds or ctx is done.
func (c *Cache) Address(ctx context.Context) (model.DiscoveryEndpoint, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return model.DiscoveryEndpoint{}, fmt.Errorf("waiting for concurrent bootstrap: %w", ctx.Err())
	}
	defer func() { <-c.sem }()

	c.mu.Lock()
	ep, err := c.repo.Get()
	c.mu.Unlock()
	switch {
	case err == nil && ep.Valid:
		c.metrics.hitsCnt.Inc()
		return ep, nil
	case err != nil && !errors.Is(err, discovery_endpoint.EndpointNotFoundError{}):
		c.logger.
			Error().
			Err(fmt.Errorf("getting endpoint from repo: %w", err)).
			Send()
	}
	c.metrics.missesCnt.Inc()

	for attempt := 1; ; attempt++ {
		ep, err := c.gw.Lookup(ctx, c.bootstrapAddr)
		if err == nil {
			ep.Valid = true
			c.mu.Lock()
			err := c.repo.Set(ep)
			c.mu.Unlock()
			if err != nil {
				c.logger.
					Error().
					Err(fmt.Errorf("storing endpoint to repo: %w", err)).
					Send()
			}
			c.logger.Info().Str("registry", ep.Addr()).Int("attempt", attempt).Msg("discovery address resolved")
			return ep, nil
		}

		c.metrics.bootstrapFailuresCnt.Inc()
		c.logger.
			Warn().
			Err(fmt.Errorf("looking up discovery address: %w", err)).
			Int("attempt", attempt).
			Dur("backoff", c.backoff).
			Send()

		select {
		case <-ctx.Done():
			return model.DiscoveryEndpoint{}, fmt.Errorf("waiting for bootstrap: %w", ctx.Err())
		case <-c.clock.After(c.backoff):
		}
	}
}

// Invalidate marks the cached endpoint stale if it is still ep.
// An endpoint already replaced by a newer bootstrap is left alone.
func (c *Cache) Invalidate(ep model.DiscoveryEndpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.repo.Get()
	if err != nil || !cur.Valid || !cur.SameAddr(ep) {
		return
	}

	cur.Valid = false
	if err := c.repo.Set(cur); err != nil {
		c.logger.
			Error().
			Err(fmt.Errorf("storing invalidated endpoint: %w", err)).
			Send()
		return
	}

	c.metrics.invalidationsCnt.Inc()
	c.logger.Warn().Str("registry", cur.Addr()).Msg("discovery address invalidated")
}
