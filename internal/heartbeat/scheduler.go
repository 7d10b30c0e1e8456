package heartbeat

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/horockey/regclient/internal/environment"
	"github.com/horockey/regclient/internal/gateway/monitor"
	"github.com/horockey/regclient/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Scheduler periodically announces liveness to the monitor and applies the
// active-hours environment mode. A failed tick never stops the loop.
type Scheduler struct {
	period      time.Duration
	callTimeout time.Duration
	monitorName string
	window      model.ActiveWindow
	resolver    model.Resolver
	gw          monitor.Gateway
	env         environment.Environment
	entry       model.EntryFunc
	clock       clock.Clock
	logger      zerolog.Logger
	metrics     *metrics
	state       atomic.Int32
}

// New builds a scheduler. callTimeout bounds the heartbeat step of a tick.
func New(
	period time.Duration,
	callTimeout time.Duration,
	monitorName string,
	window model.ActiveWindow,
	resolver model.Resolver,
	gw monitor.Gateway,
	env environment.Environment,
	entry model.EntryFunc,
	clk clock.Clock,
	logger zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		period:      period,
		callTimeout: callTimeout,
		monitorName: monitorName,
		window:      window,
		resolver:    resolver,
		gw:          gw,
		env:         env,
		entry:       entry,
		clock:       clk,
		logger:      logger,
		metrics:     newMetrics(),
	}
}

func (s *Scheduler) Metrics() []prometheus.Collector {
	return s.metrics.list()
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Start runs the loop until ctx is done. A scheduler runs at most once.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("scheduler is %s, expected %s", s.State(), StateIdle)
	}
	defer s.state.Store(int32(StateStopped))

	s.logger.Info().Dur("period", s.period).Msg("heartbeat started")

	ticker := s.clock.Ticker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("heartbeat stopped")
			return fmt.Errorf("running context: %w", ctx.Err())
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.metrics.ticksCnt.Inc()

	hbCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	err := s.heartbeat(hbCtx)
	cancel()

	if err != nil {
		s.metrics.failuresCnt.Inc()
		s.logger.
			Warn().
			Err(model.HeartbeatFailure{Err: err}).
			Send()
	} else {
		s.metrics.sentCnt.Inc()
	}

	active := s.window.Contains(s.clock.Now())
	if err := s.env.SetActive(ctx, active); err != nil {
		s.metrics.envErrCnt.Inc()
		s.logger.
			Error().
			Err(fmt.Errorf("setting environment mode (active=%t): %w", active, err)).
			Send()
	}
}

func (s *Scheduler) heartbeat(ctx context.Context) error {
	entry, ok := s.entry()
	if !ok {
		return model.ErrNotRegistered
	}

	mon, found, err := s.resolver.Resolve(ctx, s.monitorName)
	if err != nil {
		return fmt.Errorf("resolving monitor: %w", err)
	}
	if !found {
		return model.ServiceNotFoundError{Name: s.monitorName}
	}

	if err := s.gw.ReceiveHeartbeat(ctx, mon.Addr(), entry); err != nil {
		return fmt.Errorf("delivering to %s: %w", mon.Addr(), err)
	}

	return nil
}
