package environment

import "context"

// Environment applies the host side effect for the active/inactive mode.
// SetActive must be idempotent: it is called once per heartbeat tick.
type Environment interface {
	SetActive(ctx context.Context, active bool) error
}

var _ Environment = Noop{}

type Noop struct{}

func (Noop) SetActive(context.Context, bool) error {
	return nil
}
