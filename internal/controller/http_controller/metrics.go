package http_controller

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist *prometheus.HistogramVec
	requestsCnt    *prometheus.CounterVec
	okRespCnt      prometheus.Counter
	errRespCnt     prometheus.Counter
}

func newMetrics() *metrics {
	const ss = "admin_http_controller"
	return &metrics{
		handleTimeHist: prometheus.NewHistogramVec(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution per route"),
		), []string{"route"}),
		requestsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming requests per route",
		}, []string{"route"}),
		okRespCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "ok_responses_cnt",
			Subsystem: ss,
			Help:      "Count of requests answered with 2xx",
		}),
		errRespCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "err_responses_cnt",
			Subsystem: ss,
			Help:      "Count of requests answered with an error status",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.requestsCnt,
		m.okRespCnt,
		m.errRespCnt,
	}
}
