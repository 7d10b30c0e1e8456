package regclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/regclient/internal/controller/http_controller"
	"github.com/horockey/regclient/internal/endpoint_cache"
	"github.com/horockey/regclient/internal/environment"
	"github.com/horockey/regclient/internal/environment/xset_environment"
	"github.com/horockey/regclient/internal/gateway/bootstrap"
	"github.com/horockey/regclient/internal/gateway/bootstrap/http_bootstrap"
	"github.com/horockey/regclient/internal/gateway/discovery_registry"
	"github.com/horockey/regclient/internal/gateway/discovery_registry/grpc_discovery_registry"
	"github.com/horockey/regclient/internal/gateway/monitor"
	"github.com/horockey/regclient/internal/gateway/monitor/grpc_monitor"
	"github.com/horockey/regclient/internal/heartbeat"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/monitor_logger"
	"github.com/horockey/regclient/internal/netinfo"
	"github.com/horockey/regclient/internal/processor"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint/badger_discovery_endpoint"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint/inmemory_discovery_endpoint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"google.golang.org/grpc"
)

// Client registers its Host in the discovery registry, keeps the
// registration alive with heartbeats and resolves other services.
//
// A Client serves once: build a new one to register again.
type Client struct {
	host   Host
	params createClientParams
	logger zerolog.Logger

	src         *switchSource
	proc        *processor.Processor
	scheduler   *heartbeat.Scheduler
	monLogger   *monitor_logger.MonitorLogger
	registryGW  discovery_registry.Gateway
	monitorGW   monitor.Gateway
	bootstrapGW bootstrap.Gateway
	ctrl        *http_controller.HttpController

	self  atomic.Pointer[model.RegistryEntry]
	cache atomic.Pointer[endpoint_cache.Cache]
	repo  atomic.Pointer[EndpointRepo]

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewClient(host Host, opts ...options.Option[createClientParams]) (*Client, error) {
	if host == nil {
		return nil, errors.New("got nil host")
	}
	if host.Name() == "" {
		return nil, errors.New("host name is empty")
	}

	params := defaultCreateClientParams()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	logger := params.logger.With().Str("service", host.Name()).Logger()

	if params.env == nil {
		switch params.xsetDisplay {
		case "":
			params.env = environment.Noop{}
		default:
			params.env = xset_environment.New(
				params.xsetDisplay,
				logger.With().Str("subscope", "xset").Logger(),
			)
		}
	}

	cl := Client{
		host:   host,
		params: params,
		logger: logger,
		src:    &switchSource{},
		stopCh: make(chan struct{}),
		registryGW: grpc_discovery_registry.New(
			params.callTimeout,
			logger.With().Str("subscope", "registry GW").Logger(),
		),
		monitorGW: grpc_monitor.New(
			params.callTimeout,
			logger.With().Str("subscope", "monitor GW").Logger(),
		),
		bootstrapGW: http_bootstrap.New(
			params.callTimeout,
			logger.With().Str("subscope", "bootstrap GW").Logger(),
		),
	}

	cl.proc = processor.New(
		cl.src,
		cl.registryGW,
		logger.With().Str("subscope", "processor").Logger(),
	)

	cl.monLogger = monitor_logger.New(
		params.monitorName,
		cl.proc,
		cl.monitorGW,
		cl.Entry,
		logger.With().Str("subscope", "monitor_logger").Logger(),
	)

	cl.scheduler = heartbeat.New(
		params.heartbeatPeriod,
		params.callTimeout,
		params.monitorName,
		params.activeWindow,
		cl.proc,
		cl.monitorGW,
		params.env,
		cl.Entry,
		params.clock,
		logger.With().Str("subscope", "heartbeat").Logger(),
	)

	if params.adminAddr != "" {
		cl.ctrl = http_controller.New(
			params.adminAddr,
			cl.Entry,
			cl.proc,
			logger.With().Str("subscope", "http_controller").Logger(),
		)
	}

	return &cl, nil
}

// Serve registers the host in the registry listening at
// registryHost:registryPort and runs it until Stop, ctx cancellation or
// host exit. A registration failure is returned as RegistrationError.
func (cl *Client) Serve(ctx context.Context, registryHost string, registryPort int32) error {
	if registryHost == "" || registryPort <= 0 {
		return fmt.Errorf("invalid registry address %s:%d", registryHost, registryPort)
	}

	return cl.serve(ctx, endpoint_cache.NewStatic(registryHost, registryPort))
}

// ServeBootstrap is Serve with the registry address looked up from
// http://<bootstrapAddr>/resolve. The lookup is retried until it succeeds.
func (cl *Client) ServeBootstrap(ctx context.Context, bootstrapAddr string) (resErr error) {
	if bootstrapAddr == "" {
		return errors.New("bootstrap addr is empty")
	}

	repo := cl.params.endpointRepo
	switch {
	case repo != nil:
	case cl.params.badgerDir != "":
		db, err := badger.Open(badger.DefaultOptions(cl.params.badgerDir))
		if err != nil {
			return fmt.Errorf("opening badger at %s: %w", cl.params.badgerDir, err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				resErr = errors.Join(resErr, fmt.Errorf("closing badger: %w", err))
			}
		}()
		repo = badger_discovery_endpoint.New(db)
	default:
		repo = inmemory_discovery_endpoint.New()
	}
	cl.repo.Store(&repo)

	cache := endpoint_cache.New(
		bootstrapAddr,
		cl.bootstrapGW,
		repo,
		cl.params.bootstrapBackoff,
		cl.params.clock,
		cl.logger.With().Str("subscope", "endpoint_cache").Logger(),
	)
	cl.cache.Store(cache)

	return cl.serve(ctx, cache)
}

func (cl *Client) serve(ctx context.Context, src model.AddressSource) error {
	if !cl.started.CompareAndSwap(false, true) {
		return errors.New("client already served")
	}
	cl.src.set(src)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		hostErr error
		hostMu  sync.Mutex
	)
	setHostErr := func(err error) {
		hostMu.Lock()
		defer hostMu.Unlock()
		hostErr = errors.Join(hostErr, err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-cl.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	ip, identifier, err := cl.identity()
	if err != nil {
		cancel()
		wg.Wait()
		return model.RegistrationError{Name: cl.host.Name(), Err: err}
	}

	// Stop also aborts a registration stuck in bootstrap retries.
	entry, err := cl.proc.Register(runCtx, cl.host.Name(), ip, identifier)
	if err != nil {
		cancel()
		wg.Wait()
		return err
	}
	cl.self.Store(&entry)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cl.scheduler.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			cl.logger.
				Error().
				Err(fmt.Errorf("running heartbeat: %w", err)).
				Send()
		}
	}()

	if cl.ctrl != nil {
		reg := prometheus.NewRegistry()
		for _, col := range cl.Metrics() {
			if err := reg.Register(col); err != nil {
				cl.logger.Warn().Err(fmt.Errorf("registering admin metric: %w", err)).Send()
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cl.ctrl.Start(runCtx, reg); err != nil {
				cl.logger.
					Error().
					Err(fmt.Errorf("running http controller: %w", err)).
					Send()
			}
		}()
	}

	handlers := cl.host.RPCHandlers()
	if len(handlers) == 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()
			if err := cl.host.RunLocal(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				setHostErr(fmt.Errorf("running host locally: %w", err))
			}
		}()

		<-runCtx.Done()
	} else {
		if err := cl.serveRPC(runCtx, entry.Port, handlers); err != nil {
			setHostErr(err)
		}
		cancel()
	}

	wg.Wait()

	hostMu.Lock()
	defer hostMu.Unlock()
	switch {
	case hostErr != nil:
		return hostErr
	case ctx.Err() != nil:
		return fmt.Errorf("running context: %w", ctx.Err())
	default:
		return nil
	}
}

// serveRPC blocks until ctx is done or the server fails, then drains.
func (cl *Client) serveRPC(ctx context.Context, port int32, handlers []Handler) error {
	lis, err := net.Listen("tcp", ":"+strconv.Itoa(int(port)))
	if err != nil {
		return fmt.Errorf("listening on assigned port %d: %w", port, err)
	}

	srv := grpc.NewServer()
	lo.ForEach(handlers, func(h Handler, _ int) {
		srv.RegisterService(h.Desc, h.Impl)
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
		close(errCh)
	}()

	cl.logger.Info().Int32("port", port).Int("services", len(handlers)).Msg("serving rpc")

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving rpc: %w", err)
		}
		return nil
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(cl.params.drainTimeout):
		cl.logger.Warn().Msg("rpc drain timed out, forcing stop")
		srv.Stop()
		<-stopped
	}

	return nil
}

func (cl *Client) identity() (ip string, identifier string, err error) {
	ip, identifier = cl.params.selfIP, cl.params.identifier
	if ip != "" && identifier != "" {
		return ip, identifier, nil
	}

	local, err := netinfo.Local()
	if err != nil {
		return "", "", fmt.Errorf("detecting local identity: %w", err)
	}

	if ip == "" {
		ip = local.IP
	}
	if identifier == "" {
		identifier = local.Identifier
	}
	return ip, identifier, nil
}

// Stop ends Serve. Safe to call many times and before Serve.
func (cl *Client) Stop() {
	cl.stopOnce.Do(func() { close(cl.stopCh) })
}

// Resolve returns the address of the named service, or ("", 0) when it is
// unknown or the registry cannot be reached.
func (cl *Client) Resolve(ctx context.Context, name string) (string, int32) {
	entry, found, err := cl.proc.Resolve(ctx, name)
	if err != nil {
		cl.logger.
			Error().
			Err(fmt.Errorf("resolving %s: %w", name, err)).
			Send()
		return "", 0
	}
	if !found {
		cl.logger.Warn().Str("name", name).Msg("service not found")
		return "", 0
	}

	return entry.IP, entry.Port
}

// LogMessage forwards text to the monitor. Failures are only logged.
// The call is bounded by the call timeout.
func (cl *Client) LogMessage(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), cl.params.callTimeout)
	defer cancel()
	_ = cl.monLogger.LogMessage(ctx, text)
}

// LogValue forwards value to the monitor. Failures are only logged.
// The call is bounded by the call timeout.
func (cl *Client) LogValue(value float32) {
	ctx, cancel := context.WithTimeout(context.Background(), cl.params.callTimeout)
	defer cancel()
	_ = cl.monLogger.LogValue(ctx, value)
}

// Entry returns the registry entry of this process once registered.
func (cl *Client) Entry() (RegistryEntry, bool) {
	e := cl.self.Load()
	if e == nil {
		return RegistryEntry{}, false
	}
	return *e, true
}

func (cl *Client) SelfHost() string {
	e, _ := cl.Entry()
	return e.IP
}

func (cl *Client) SelfPort() int32 {
	e, _ := cl.Entry()
	return e.Port
}

func (cl *Client) Metrics() []prometheus.Collector {
	res := slices.Concat(
		cl.proc.Metrics(),
		cl.scheduler.Metrics(),
		cl.monLogger.Metrics(),
		cl.registryGW.Metrics(),
		cl.monitorGW.Metrics(),
		cl.bootstrapGW.Metrics(),
	)

	if cl.ctrl != nil {
		res = append(res, cl.ctrl.Metrics()...)
	}
	if cache := cl.cache.Load(); cache != nil {
		res = append(res, cache.Metrics()...)
	}
	if repo := cl.repo.Load(); repo != nil {
		res = append(res, (*repo).Metrics()...)
	}

	return res
}
