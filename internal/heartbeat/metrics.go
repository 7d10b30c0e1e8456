package heartbeat

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	ticksCnt    prometheus.Counter
	sentCnt     prometheus.Counter
	failuresCnt prometheus.Counter
	envErrCnt   prometheus.Counter
}

func newMetrics() *metrics {
	const ss = "heartbeat"
	return &metrics{
		ticksCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "ticks_cnt",
			Subsystem: ss,
			Help:      "Count of scheduler ticks",
		}),
		sentCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "sent_cnt",
			Subsystem: ss,
			Help:      "Count of heartbeats accepted by monitor",
		}),
		failuresCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "failures_cnt",
			Subsystem: ss,
			Help:      "Count of missed heartbeats",
		}),
		envErrCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "env_errors_cnt",
			Subsystem: ss,
			Help:      "Count of failed environment mode switches",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.ticksCnt,
		m.sentCnt,
		m.failuresCnt,
		m.envErrCnt,
	}
}
