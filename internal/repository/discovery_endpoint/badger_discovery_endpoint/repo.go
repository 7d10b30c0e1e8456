package badger_discovery_endpoint

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint"
	"github.com/prometheus/client_golang/prometheus"
)

var _ discovery_endpoint.Repository = &badgerDiscoveryEndpoint{}

const endpointKey = "discovery_endpoint"

// badgerDiscoveryEndpoint survives restarts, so a process can skip the
// bootstrap lookup when the last known registry address is still good.
type badgerDiscoveryEndpoint struct {
	db      *badger.DB
	metrics *metrics
}

func New(db *badger.DB) *badgerDiscoveryEndpoint {
	return &badgerDiscoveryEndpoint{
		db:      db,
		metrics: newMetrics(db),
	}
}

func (repo *badgerDiscoveryEndpoint) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *badgerDiscoveryEndpoint) Get() (res model.DiscoveryEndpoint, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.requestsCnt.Inc()
		repo.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch {
		case resErr == nil:
			repo.metrics.successProcessCnt.Inc()
			repo.metrics.keyHitsCnt.Inc()
		case errors.Is(resErr, discovery_endpoint.EndpointNotFoundError{}):
			repo.metrics.keyMissesCnt.Inc()
			fallthrough
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	if err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(endpointKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return discovery_endpoint.EndpointNotFoundError{}
			}
			return fmt.Errorf("getting item: %w", err)
		}

		if err := item.Value(func(val []byte) error {
			if err := gob.
				NewDecoder(bytes.NewBuffer(val)).
				Decode(&res); err != nil {
				return fmt.Errorf("decoding gob: %w", err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("getting value: %w", err)
		}

		return nil
	}); err != nil {
		return model.DiscoveryEndpoint{}, fmt.Errorf("reading from db: %w", err)
	}

	return res, nil
}

func (repo *badgerDiscoveryEndpoint) Set(ep model.DiscoveryEndpoint) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.requestsCnt.Inc()
		repo.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			repo.metrics.successProcessCnt.Inc()
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	buf := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buf).Encode(ep); err != nil {
		return fmt.Errorf("encoding gob: %w", err)
	}

	if err := repo.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(endpointKey), buf.Bytes()); err != nil {
			return fmt.Errorf("setting item to db: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing upd txn: %w", err)
	}

	return nil
}
