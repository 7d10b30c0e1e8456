package regclient

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/regclient/internal/environment"
	"github.com/horockey/regclient/internal/model"
	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option = options.Option[createClientParams]

type createClientParams struct {
	logger           zerolog.Logger
	heartbeatPeriod  time.Duration
	activeWindow     model.ActiveWindow
	bootstrapBackoff time.Duration
	callTimeout      time.Duration
	drainTimeout     time.Duration
	monitorName      string
	selfIP           string
	identifier       string
	adminAddr        string
	badgerDir        string
	xsetDisplay      string
	clock            clock.Clock

	env          environment.Environment
	endpointRepo EndpointRepo
}

func defaultCreateClientParams() createClientParams {
	return createClientParams{
		heartbeatPeriod:  time.Minute,
		activeWindow:     model.DefaultActiveWindow(),
		bootstrapBackoff: time.Second * 5, //nolint: mnd
		callTimeout:      time.Second * 5, //nolint: mnd
		drainTimeout:     time.Second * 5, //nolint: mnd
		monitorName:      MonitorServiceName,
		clock:            clock.New(),
		logger: zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("scope", "regclient").
			Logger(),
	}
}

// Sets custom logger.
// Default is stdout logger.
func WithLogger(l zerolog.Logger) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.logger = l
		return nil
	}
}

// Sets custom heartbeat period.
// Default is 1m.
func WithHeartbeatPeriod(p time.Duration) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if p <= 0 {
			return fmt.Errorf("heartbeat period must be positive, got: %s", p.String())
		}
		target.heartbeatPeriod = p
		return nil
	}
}

// Sets hours of day (local time) the environment is kept active.
// Default is [7, 22).
func WithActiveWindow(startHour, endHour int) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		w := model.ActiveWindow{StartHour: startHour, EndHour: endHour}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("validating active window: %w", err)
		}
		target.activeWindow = w
		return nil
	}
}

// Sets pause between failed bootstrap lookups.
// Default is 5s.
func WithBootstrapBackoff(b time.Duration) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if b <= 0 {
			return fmt.Errorf("bootstrap backoff must be positive, got: %s", b.String())
		}
		target.bootstrapBackoff = b
		return nil
	}
}

// Sets timeout of a single registry, monitor or bootstrap call.
// Default is 5s.
func WithCallTimeout(to time.Duration) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if to <= 0 {
			return fmt.Errorf("call timeout must be positive, got: %s", to.String())
		}
		target.callTimeout = to
		return nil
	}
}

// Sets how long Serve waits for in-flight host RPCs on stop.
// Default is 5s.
func WithDrainTimeout(to time.Duration) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if to <= 0 {
			return fmt.Errorf("drain timeout must be positive, got: %s", to.String())
		}
		target.drainTimeout = to
		return nil
	}
}

// Sets environment switched on heartbeat ticks.
// Default does nothing.
func WithEnvironment(env Environment) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if env == nil {
			return errors.New("got nil environment")
		}
		target.env = env
		return nil
	}
}

// Switches the X display power with xset on heartbeat ticks.
// Ignored when WithEnvironment is applied.
func WithXsetDisplay(display string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if display == "" {
			return errors.New("got empty display")
		}
		target.xsetDisplay = display
		return nil
	}
}

// Sets IP reported to the registry.
// Default is the first private IPv4 of the host.
func WithSelfIP(ip string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		parsed := net.ParseIP(ip)
		if parsed == nil || parsed.To4() == nil {
			return fmt.Errorf("not an ipv4 address: %q", ip)
		}
		target.selfIP = parsed.String()
		return nil
	}
}

// Sets identifier reported to the registry.
// Default is the MAC of the interface owning the self IP.
func WithIdentifier(id string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if id == "" {
			return errors.New("got empty identifier")
		}
		target.identifier = id
		return nil
	}
}

// Enables admin HTTP endpoint on given address.
// Disabled by default.
func WithAdminAddr(addr string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("parsing admin addr: %w", err)
		}
		target.adminAddr = addr
		return nil
	}
}

// Persists the bootstrapped registry address in badger under dir.
// Default keeps it in memory.
func WithBadgerDir(dir string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if dir == "" {
			return errors.New("got empty badger dir")
		}
		target.badgerDir = dir
		return nil
	}
}

// Sets user-defined storage of the bootstrapped registry address.
// Takes precedence over WithBadgerDir.
//
// WARNING! Apply this opt only if you know what you are doing.
func WithEndpointRepo(repo EndpointRepo) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if repo == nil {
			return errors.New("got nil endpoint repo")
		}
		target.endpointRepo = repo
		return nil
	}
}

func WithClock(clk clock.Clock) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if clk == nil {
			return errors.New("got nil clock")
		}
		target.clock = clk
		return nil
	}
}

// Sets logical name of the monitor service.
// Default is "monitor".
func WithMonitorName(name string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if name == "" {
			return errors.New("got empty monitor name")
		}
		target.monitorName = name
		return nil
	}
}
