package monitor

import (
	"context"

	"github.com/horockey/regclient/internal/model"
)

type Gateway interface {
	model.MetricsProvider
	ReceiveHeartbeat(ctx context.Context, addr string, entry model.RegistryEntry) error
	WriteMessageLog(ctx context.Context, addr string, entry model.RegistryEntry, message string) error
	WriteValueLog(ctx context.Context, addr string, entry model.RegistryEntry, value float32) error
}
