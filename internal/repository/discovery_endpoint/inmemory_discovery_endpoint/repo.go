package inmemory_discovery_endpoint

import (
	"sync"
	"time"

	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint"
	"github.com/prometheus/client_golang/prometheus"
)

var _ discovery_endpoint.Repository = &inmemoryDiscoveryEndpoint{}

type inmemoryDiscoveryEndpoint struct {
	ep      *model.DiscoveryEndpoint
	mu      sync.RWMutex
	metrics *metrics
}

func New() *inmemoryDiscoveryEndpoint {
	repo := inmemoryDiscoveryEndpoint{}
	repo.metrics = newMetrics(&repo)
	return &repo
}

func (repo *inmemoryDiscoveryEndpoint) Get() (res model.DiscoveryEndpoint, resErr error) {
	repo.metrics.getRequestsCnt.Inc()
	defer func(ts time.Time) {
		repo.metrics.handleTimeHist.Observe(float64(time.Since(ts)))
		switch resErr {
		case nil:
			repo.metrics.successProcessCnt.Inc()
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if repo.ep == nil {
		return model.DiscoveryEndpoint{}, discovery_endpoint.EndpointNotFoundError{}
	}

	return *repo.ep, nil
}

func (repo *inmemoryDiscoveryEndpoint) Set(ep model.DiscoveryEndpoint) (resErr error) {
	repo.metrics.setRequestsCnt.Inc()
	defer func(ts time.Time) {
		repo.metrics.handleTimeHist.Observe(float64(time.Since(ts)))
		switch resErr {
		case nil:
			repo.metrics.successProcessCnt.Inc()
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.ep = &ep
	return nil
}

func (repo *inmemoryDiscoveryEndpoint) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *inmemoryDiscoveryEndpoint) valid() bool {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return repo.ep != nil && repo.ep.Valid
}
