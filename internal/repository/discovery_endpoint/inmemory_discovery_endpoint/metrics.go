package inmemory_discovery_endpoint

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist    prometheus.Histogram
	getRequestsCnt    prometheus.Counter
	setRequestsCnt    prometheus.Counter
	successProcessCnt prometheus.Counter
	errProcessCnt     prometheus.Counter
	validGauge        prometheus.GaugeFunc
}

func newMetrics(repo *inmemoryDiscoveryEndpoint) *metrics {
	const ss = "inmemory_discovery_endpoint"

	return &metrics{
		handleTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution"),
		)),
		getRequestsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "get_requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming get requests",
		}),
		setRequestsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "set_requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming set requests",
		}),
		successProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "success_responses_cnt",
			Subsystem: ss,
			Help:      "Count of successfully finished processes",
		}),
		errProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "err_processes_cnt",
			Subsystem: ss,
			Help:      "Count of processes finished with non-nil error",
		}),
		validGauge: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:      "endpoint_valid_gauge",
			Subsystem: ss,
			Help:      "1 if stored discovery endpoint is valid, 0 otherwise",
		}, func() float64 {
			if repo.valid() {
				return 1
			}
			return 0
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.getRequestsCnt,
		m.setRequestsCnt,
		m.successProcessCnt,
		m.errProcessCnt,
		m.validGauge,
	}
}
