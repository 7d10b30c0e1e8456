package monitor_logger

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	sentCnt    *prometheus.CounterVec
	droppedCnt *prometheus.CounterVec
}

func newMetrics() *metrics {
	const ss = "monitor_logger"
	return &metrics{
		sentCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "sent_cnt",
			Subsystem: ss,
			Help:      "Count of log records delivered to monitor",
		}, []string{"kind"}),
		droppedCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "dropped_cnt",
			Subsystem: ss,
			Help:      "Count of log records that could not be delivered",
		}, []string{"kind"}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{m.sentCnt, m.droppedCnt}
}
