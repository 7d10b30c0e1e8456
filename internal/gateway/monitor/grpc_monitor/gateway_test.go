package grpc_monitor_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/horockey/regclient/internal/gateway/monitor/grpc_monitor"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/rpc/rpctest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entry = model.RegistryEntry{Name: "svc", IP: "10.0.0.5", Port: 9090, Identifier: "AA-BB-CC"}

func startMonitor(t *testing.T) (*rpctest.Monitor, string) {
	mon := rpctest.NewMonitor()
	host, port := mon.Start(t)
	return mon, net.JoinHostPort(host, strconv.Itoa(int(port)))
}

func Test_ReceiveHeartbeat(t *testing.T) {
	mon, addr := startMonitor(t)
	gw := grpc_monitor.New(time.Second, zerolog.Nop())

	require.NoError(t, gw.ReceiveHeartbeat(context.Background(), addr, entry))
	assert.Equal(t, []model.RegistryEntry{entry}, mon.Heartbeats())
}

func Test_WriteLogs(t *testing.T) {
	mon, addr := startMonitor(t)
	gw := grpc_monitor.New(time.Second, zerolog.Nop())

	require.NoError(t, gw.WriteMessageLog(context.Background(), addr, entry, "hello"))
	require.NoError(t, gw.WriteValueLog(context.Background(), addr, entry, 1.5))

	assert.Equal(t, []string{"hello"}, mon.Messages())
	assert.Equal(t, []float32{1.5}, mon.Values())
}

func Test_RemoteFailure(t *testing.T) {
	mon, addr := startMonitor(t)
	mon.FailNext(1)
	gw := grpc_monitor.New(time.Second, zerolog.Nop())

	assert.Error(t, gw.ReceiveHeartbeat(context.Background(), addr, entry))
	assert.NoError(t, gw.ReceiveHeartbeat(context.Background(), addr, entry))
	assert.Len(t, mon.Heartbeats(), 1)
}
