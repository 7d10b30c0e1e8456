package grpc_discovery_registry_test

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/horockey/regclient/internal/gateway/discovery_registry/grpc_discovery_registry"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/rpc/rpctest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func startRegistry(t *testing.T) (*rpctest.Registry, string) {
	reg := rpctest.NewRegistry()
	host, port := reg.Start(t)
	return reg, net.JoinHostPort(host, strconv.Itoa(int(port)))
}

func Test_RegisterService_Success(t *testing.T) {
	reg, addr := startRegistry(t)
	reg.BasePort = 9090

	gw := grpc_discovery_registry.New(time.Second, zerolog.Nop())

	entry, err := gw.RegisterService(context.Background(), addr, model.RegistryEntry{
		Name:       "svc",
		IP:         "10.0.0.5",
		Identifier: "AA-BB-CC",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RegistryEntry{
		Name:       "svc",
		IP:         "10.0.0.5",
		Port:       9090,
		Identifier: "AA-BB-CC",
	}, entry)
}

func Test_RegisterService_RemoteError(t *testing.T) {
	reg, addr := startRegistry(t)
	reg.FailRegister(status.Error(codes.PermissionDenied, "nope"))

	gw := grpc_discovery_registry.New(time.Second, zerolog.Nop())

	_, err := gw.RegisterService(context.Background(), addr, model.RegistryEntry{Name: "svc"})
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.False(t, errors.As(err, &model.TransportError{}))
}

func Test_RegisterService_Unreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	gw := grpc_discovery_registry.New(time.Second, zerolog.Nop())

	_, err = gw.RegisterService(context.Background(), addr, model.RegistryEntry{Name: "svc"})
	require.Error(t, err)
	assert.True(t, errors.As(err, &model.TransportError{}))
}

func Test_Discover_Success(t *testing.T) {
	reg, addr := startRegistry(t)
	want := model.RegistryEntry{Name: "monitor", IP: "10.0.0.7", Port: 8080, Identifier: "11-22"}
	reg.Put(want)

	gw := grpc_discovery_registry.New(time.Second, zerolog.Nop())

	got, err := gw.Discover(context.Background(), addr, "monitor")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func Test_Discover_NotFound(t *testing.T) {
	_, addr := startRegistry(t)

	gw := grpc_discovery_registry.New(time.Second, zerolog.Nop())

	got, err := gw.Discover(context.Background(), addr, "missing")
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, model.ServiceNotFoundError{Name: "missing"}))
}

func Test_Discover_ZeroEntryIsNotFound(t *testing.T) {
	reg, addr := startRegistry(t)
	reg.Put(model.RegistryEntry{Name: "half", IP: "", Port: 0})

	gw := grpc_discovery_registry.New(time.Second, zerolog.Nop())

	got, err := gw.Discover(context.Background(), addr, "half")
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, model.ServiceNotFoundError{Name: "half"}))
}
