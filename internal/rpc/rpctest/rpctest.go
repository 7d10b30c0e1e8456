// Package rpctest provides in-process discovery registry and monitor
// servers for tests.
package rpctest

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/rpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Serve starts a gRPC server on a random local port and returns its host and port.
// The server is stopped on test cleanup.
func Serve(t testing.TB, register func(s *grpc.Server)) (string, int32) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	host, portStr, err := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, int32(port)
}

var _ rpc.DiscoveryServer = &Registry{}

// Registry assigns sequential ports starting from BasePort.
type Registry struct {
	BasePort int32

	mu            sync.Mutex
	entries       map[string]model.RegistryEntry
	registerErr   error
	discoverErr   error
	registerCalls int
	discoverCalls int
}

func NewRegistry() *Registry {
	return &Registry{
		BasePort: 50000, //nolint: mnd
		entries:  map[string]model.RegistryEntry{},
	}
}

func (r *Registry) Start(t testing.TB) (string, int32) {
	t.Helper()
	return Serve(t, func(s *grpc.Server) { rpc.RegisterDiscoveryServer(s, r) })
}

// Put stores entry as is, bypassing port assignment.
func (r *Registry) Put(entry model.RegistryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Name] = entry
}

func (r *Registry) FailRegister(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerErr = err
}

func (r *Registry) FailDiscover(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discoverErr = err
}

func (r *Registry) Calls() (register int, discover int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerCalls, r.discoverCalls
}

func (r *Registry) RegisterService(_ context.Context, req *rpc.RegistryEntry) (*rpc.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registerCalls++
	if r.registerErr != nil {
		return nil, r.registerErr
	}

	entry := rpc.RegistryEntryToModel(req)
	entry.Port = r.BasePort + int32(len(r.entries))
	r.entries[entry.Name] = entry

	return rpc.NewRegistryEntry(entry), nil
}

func (r *Registry) Discover(_ context.Context, req *rpc.RegistryEntry) (*rpc.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.discoverCalls++
	if r.discoverErr != nil {
		return nil, r.discoverErr
	}

	entry, found := r.entries[req.Name]
	if !found {
		return nil, status.Errorf(codes.NotFound, "no service named %s", req.Name)
	}

	return rpc.NewRegistryEntry(entry), nil
}

var _ rpc.MonitorServer = &Monitor{}

type Monitor struct {
	mu         sync.Mutex
	heartbeats []model.RegistryEntry
	messages   []string
	values     []float32
	failures   int
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) Start(t testing.TB) (string, int32) {
	t.Helper()
	return Serve(t, func(s *grpc.Server) { rpc.RegisterMonitorServer(s, m) })
}

// FailNext makes the next n calls answer codes.Internal.
func (m *Monitor) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

func (m *Monitor) Heartbeats() []model.RegistryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RegistryEntry(nil), m.heartbeats...)
}

func (m *Monitor) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func (m *Monitor) Values() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float32(nil), m.values...)
}

func (m *Monitor) ReceiveHeartbeat(_ context.Context, req *rpc.RegistryEntry) (*emptypb.Empty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLocked(); err != nil {
		return nil, err
	}
	m.heartbeats = append(m.heartbeats, rpc.RegistryEntryToModel(req))
	return &emptypb.Empty{}, nil
}

func (m *Monitor) WriteMessageLog(_ context.Context, req *rpc.MessageLog) (*emptypb.Empty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLocked(); err != nil {
		return nil, err
	}
	m.messages = append(m.messages, req.Message)
	return &emptypb.Empty{}, nil
}

func (m *Monitor) WriteValueLog(_ context.Context, req *rpc.ValueLog) (*emptypb.Empty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failLocked(); err != nil {
		return nil, err
	}
	m.values = append(m.values, req.Value)
	return &emptypb.Empty{}, nil
}

func (m *Monitor) failLocked() error {
	if m.failures <= 0 {
		return nil
	}
	m.failures--
	return status.Error(codes.Internal, "induced failure")
}
