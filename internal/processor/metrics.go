package processor

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist   *prometheus.HistogramVec
	registrationsCnt *prometheus.CounterVec
	resolutionsCnt   *prometheus.CounterVec
}

func newMetrics() *metrics {
	const ss = "processor"
	return &metrics{
		handleTimeHist: prometheus.NewHistogramVec(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution"),
		), []string{"op"}),
		registrationsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "registrations_cnt",
			Subsystem: ss,
			Help:      "Count of registration attempts by result",
		}, []string{"result"}),
		resolutionsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "resolutions_cnt",
			Subsystem: ss,
			Help:      "Count of resolutions by result",
		}, []string{"result"}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.registrationsCnt,
		m.resolutionsCnt,
	}
}
