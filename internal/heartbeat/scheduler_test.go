package heartbeat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/horockey/regclient/internal/endpoint_cache"
	"github.com/horockey/regclient/internal/gateway/discovery_registry/grpc_discovery_registry"
	"github.com/horockey/regclient/internal/gateway/monitor/grpc_monitor"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/processor"
	"github.com/horockey/regclient/internal/rpc/rpctest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var self = model.RegistryEntry{Name: "svc", IP: "10.0.0.5", Port: 9090, Identifier: "AA-BB-CC"}

func registered() (model.RegistryEntry, bool) { return self, true }

type recordingEnv struct {
	mu    sync.Mutex
	calls []bool
	err   error
}

func (e *recordingEnv) SetActive(_ context.Context, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, active)
	return e.err
}

func (e *recordingEnv) Calls() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]bool(nil), e.calls...)
}

type staticResolver struct {
	entry model.RegistryEntry
	found bool
	err   error
}

func (r staticResolver) Resolve(context.Context, string) (model.RegistryEntry, bool, error) {
	return r.entry, r.found, r.err
}

func newScheduler(t *testing.T, clk clock.Clock, period time.Duration, env *recordingEnv) (*Scheduler, *rpctest.Monitor) {
	t.Helper()

	reg := rpctest.NewRegistry()
	host, port := reg.Start(t)

	mon := rpctest.NewMonitor()
	monHost, monPort := mon.Start(t)
	reg.Put(model.RegistryEntry{Name: "monitor", IP: monHost, Port: monPort})

	pr := processor.New(
		endpoint_cache.NewStatic(host, port),
		grpc_discovery_registry.New(time.Second, zerolog.Nop()),
		zerolog.Nop(),
	)

	return New(
		period,
		time.Second,
		"monitor",
		model.DefaultActiveWindow(),
		pr,
		grpc_monitor.New(time.Second, zerolog.Nop()),
		env,
		registered,
		clk,
		zerolog.Nop(),
	), mon
}

func TestTick_ActiveWindow(t *testing.T) {
	cases := []struct {
		name   string
		hour   int
		minute int
		active bool
	}{
		{name: "before window", hour: 6, minute: 59, active: false},
		{name: "window opens", hour: 7, minute: 0, active: true},
		{name: "last minute", hour: 21, minute: 59, active: true},
		{name: "window closed", hour: 22, minute: 0, active: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := clock.NewMock()
			clk.Set(time.Date(2024, 3, 1, tc.hour, tc.minute, 0, 0, time.Local))
			env := &recordingEnv{}

			s, mon := newScheduler(t, clk, time.Minute, env)
			s.tick(context.Background())

			assert.Equal(t, []bool{tc.active}, env.Calls())
			assert.Equal(t, []model.RegistryEntry{self}, mon.Heartbeats())
		})
	}
}

func TestTick_EnvironmentAppliedWhenMonitorMissing(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local))
	env := &recordingEnv{}

	s := New(
		time.Minute,
		time.Second,
		"monitor",
		model.DefaultActiveWindow(),
		staticResolver{found: false},
		grpc_monitor.New(time.Second, zerolog.Nop()),
		env,
		registered,
		clk,
		zerolog.Nop(),
	)

	s.tick(context.Background())
	s.tick(context.Background())

	assert.Equal(t, []bool{true, true}, env.Calls())
}

func TestHeartbeat_Errors(t *testing.T) {
	resolveErr := errors.New("registry down")

	cases := []struct {
		name     string
		resolver model.Resolver
		entry    model.EntryFunc
		check    func(t *testing.T, err error)
	}{
		{
			name:     "not registered",
			resolver: staticResolver{},
			entry:    func() (model.RegistryEntry, bool) { return model.RegistryEntry{}, false },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, model.ErrNotRegistered)
			},
		},
		{
			name:     "monitor unknown",
			resolver: staticResolver{found: false},
			entry:    registered,
			check: func(t *testing.T, err error) {
				var nf model.ServiceNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "monitor", nf.Name)
			},
		},
		{
			name:     "resolve failure",
			resolver: staticResolver{err: resolveErr},
			entry:    registered,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, resolveErr)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(
				time.Minute,
				time.Second,
				"monitor",
				model.DefaultActiveWindow(),
				tc.resolver,
				grpc_monitor.New(time.Second, zerolog.Nop()),
				&recordingEnv{},
				tc.entry,
				clock.NewMock(),
				zerolog.Nop(),
			)
			tc.check(t, s.heartbeat(context.Background()))
		})
	}
}

func TestStart_FailureDoesNotStopLoop(t *testing.T) {
	env := &recordingEnv{}
	s, mon := newScheduler(t, clock.New(), 20*time.Millisecond, env)
	mon.FailNext(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(mon.Heartbeats()) >= 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, StateRunning, s.State())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.Equal(t, StateStopped, s.State())
	assert.GreaterOrEqual(t, len(env.Calls()), 3)
}

// blockingResolver never answers before ctx is done, like a registry
// address source stuck in bootstrap.
type blockingResolver struct{}

func (blockingResolver) Resolve(ctx context.Context, _ string) (model.RegistryEntry, bool, error) {
	<-ctx.Done()
	return model.RegistryEntry{}, false, ctx.Err()
}

func TestStart_StuckResolveStillAppliesEnvironment(t *testing.T) {
	env := &recordingEnv{}
	s := New(
		20*time.Millisecond,
		10*time.Millisecond,
		"monitor",
		model.DefaultActiveWindow(),
		blockingResolver{},
		grpc_monitor.New(time.Second, zerolog.Nop()),
		env,
		registered,
		clock.New(),
		zerolog.Nop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(env.Calls()) >= 3
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStart_OnlyOnce(t *testing.T) {
	s, _ := newScheduler(t, clock.NewMock(), time.Minute, &recordingEnv{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, s.Start(ctx))
	assert.Equal(t, StateStopped, s.State())

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped")
}
