package endpoint_cache

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	hitsCnt              prometheus.Counter
	missesCnt            prometheus.Counter
	bootstrapFailuresCnt prometheus.Counter
	invalidationsCnt     prometheus.Counter
}

func newMetrics() *metrics {
	const ss = "endpoint_cache"
	return &metrics{
		hitsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "hits_cnt",
			Subsystem: ss,
			Help:      "Count of lookups served from a valid cached endpoint",
		}),
		missesCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "misses_cnt",
			Subsystem: ss,
			Help:      "Count of lookups that required a bootstrap",
		}),
		bootstrapFailuresCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "bootstrap_failures_cnt",
			Subsystem: ss,
			Help:      "Count of failed bootstrap attempts",
		}),
		invalidationsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "invalidations_cnt",
			Subsystem: ss,
			Help:      "Count of cached endpoint invalidations",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.hitsCnt,
		m.missesCnt,
		m.bootstrapFailuresCnt,
		m.invalidationsCnt,
	}
}
