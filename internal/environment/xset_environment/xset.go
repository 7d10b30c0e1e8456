package xset_environment

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/horockey/regclient/internal/environment"
	"github.com/rs/zerolog"
)

var _ environment.Environment = &xsetEnvironment{}

// xsetEnvironment forces the X display power state: on while active,
// off otherwise.
type xsetEnvironment struct {
	display string
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
	logger  zerolog.Logger
}

func New(display string, logger zerolog.Logger) *xsetEnvironment {
	return &xsetEnvironment{
		display: display,
		run:     runCmd,
		logger:  logger,
	}
}

func (env *xsetEnvironment) SetActive(ctx context.Context, active bool) error {
	args := Args(env.display, active)

	out, err := env.run(ctx, "xset", args...)
	if err != nil {
		return fmt.Errorf("running xset %v: %w", args, err)
	}

	if out = bytes.TrimSpace(out); len(out) > 0 {
		env.logger.Debug().Bytes("out", out).Msg("xset output")
	}
	return nil
}

func Args(display string, active bool) []string {
	mode := "off"
	if active {
		mode = "on"
	}
	return []string{"-display", display, "dpms", "force", mode}
}

func runCmd(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
