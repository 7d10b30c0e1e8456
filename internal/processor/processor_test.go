package processor_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/horockey/regclient/internal/endpoint_cache"
	"github.com/horockey/regclient/internal/gateway/discovery_registry/grpc_discovery_registry"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/processor"
	"github.com/horockey/regclient/internal/rpc/rpctest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type recordingSource struct {
	model.AddressSource

	mu          sync.Mutex
	invalidated []model.DiscoveryEndpoint
}

func (s *recordingSource) Invalidate(ep model.DiscoveryEndpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, ep)
}

func (s *recordingSource) invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invalidated)
}

func setup(t *testing.T) (*rpctest.Registry, *recordingSource, *processor.Processor) {
	reg := rpctest.NewRegistry()
	host, port := reg.Start(t)
	src := &recordingSource{AddressSource: endpoint_cache.NewStatic(host, port)}
	pr := processor.New(src, grpc_discovery_registry.New(time.Second, zerolog.Nop()), zerolog.Nop())
	return reg, src, pr
}

func Test_RegisterThenResolve(t *testing.T) {
	reg, _, pr := setup(t)
	reg.BasePort = 9090
	ctx := context.Background()

	want := model.RegistryEntry{Name: "svc", IP: "10.0.0.5", Port: 9090, Identifier: "AA-BB-CC"}

	entry, err := pr.Register(ctx, "svc", "10.0.0.5", "AA-BB-CC")
	require.NoError(t, err)
	assert.Equal(t, want, entry)

	got, found, err := pr.Resolve(ctx, "svc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)

	got, found, err = pr.Resolve(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, got)
}

func Test_RoundTripConsistency(t *testing.T) {
	_, _, pr := setup(t)
	ctx := context.Background()

	cases := []struct{ name, ip, id string }{
		{"alpha", "192.168.0.10", "00-11-22-33-44-55"},
		{"beta", "10.1.2.3", "66-77-88-99-AA-BB"},
		{"gamma", "172.16.0.1", "f3b6a1c2-uuid"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reg, err := pr.Register(ctx, c.name, c.ip, c.id)
			require.NoError(t, err)

			res, found, err := pr.Resolve(ctx, c.name)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, c.ip, res.IP)
			assert.Equal(t, c.id, res.Identifier)
			assert.Equal(t, reg.Port, res.Port)
		})
	}
}

func Test_Register_RemoteFailure(t *testing.T) {
	reg, src, pr := setup(t)
	reg.FailRegister(status.Error(codes.Internal, "boom"))

	_, err := pr.Register(context.Background(), "svc", "10.0.0.5", "AA")
	require.Error(t, err)

	regErr := model.RegistrationError{}
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, "svc", regErr.Name)
	assert.Equal(t, 1, src.invalidations())

	calls, _ := reg.Calls()
	assert.Equal(t, 1, calls)
}

func Test_Register_Unreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tcpAddr := lis.Addr().(*net.TCPAddr)
	require.NoError(t, lis.Close())

	pr := processor.New(
		endpoint_cache.NewStatic("127.0.0.1", int32(tcpAddr.Port)),
		grpc_discovery_registry.New(time.Second, zerolog.Nop()),
		zerolog.Nop(),
	)

	_, err = pr.Register(context.Background(), "svc", "10.0.0.5", "AA")
	assert.True(t, errors.As(err, &model.RegistrationError{}))
	assert.True(t, errors.As(err, &model.TransportError{}))
}

func Test_Resolve_RegistryFailureInvalidates(t *testing.T) {
	reg, src, pr := setup(t)
	reg.FailDiscover(status.Error(codes.Internal, "db is down"))

	_, found, err := pr.Resolve(context.Background(), "svc")
	assert.False(t, found)
	assert.True(t, errors.As(err, &model.ResolutionError{}))
	assert.Equal(t, 1, src.invalidations())
}

func Test_Resolve_NotFoundKeepsEndpoint(t *testing.T) {
	_, src, pr := setup(t)

	_, found, err := pr.Resolve(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, src.invalidations())
}

func Test_CallerCancelKeepsEndpoint(t *testing.T) {
	_, src, pr := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found, err := pr.Resolve(ctx, "svc")
	assert.False(t, found)
	assert.True(t, errors.As(err, &model.ResolutionError{}))

	_, err = pr.Register(ctx, "svc", "10.0.0.5", "AA")
	assert.True(t, errors.As(err, &model.RegistrationError{}))

	assert.Zero(t, src.invalidations())
}
