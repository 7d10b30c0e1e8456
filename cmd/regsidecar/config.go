package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/horockey/regclient"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath        = "CONFIG_PATH"
	envRegistryHost      = "REGISTRY_HOST"
	envRegistryPort      = "REGISTRY_PORT"
	envRegistryBootstrap = "REGISTRY_BOOTSTRAP"
	envServiceName       = "SERVICE_NAME"
)

type Config struct {
	ServiceName     string        `yaml:"service_name"`
	Registry        Registry      `yaml:"registry"`
	HeartbeatPeriod time.Duration `yaml:"heartbeat_period"`
	ActiveWindow    *Window       `yaml:"active_window"`
	AdminAddr       string        `yaml:"admin_addr"`
	BadgerDir       string        `yaml:"badger_dir"`
	XsetDisplay     string        `yaml:"xset_display"`
	SelfIP          string        `yaml:"self_ip"`
	Identifier      string        `yaml:"identifier"`
	LogLevel        string        `yaml:"log_level"`
}

// Registry is reached either directly by Host/Port or through Bootstrap.
type Registry struct {
	Host      string `yaml:"host"`
	Port      int32  `yaml:"port"`
	Bootstrap string `yaml:"bootstrap"`
}

type Window struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// LoadConfig reads the optional YAML file named by CONFIG_PATH, then
// applies env overrides.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{LogLevel: zerolog.InfoLevel.String()}

	if path := strings.TrimSpace(getenv(envConfigPath)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(getenv(envServiceName)); v != "" {
		cfg.ServiceName = v
	}
	if v := strings.TrimSpace(getenv(envRegistryHost)); v != "" {
		cfg.Registry.Host = v
	}
	if v := strings.TrimSpace(getenv(envRegistryPort)); v != "" {
		port, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", envRegistryPort, err)
		}
		cfg.Registry.Port = int32(port)
	}
	if v := strings.TrimSpace(getenv(envRegistryBootstrap)); v != "" {
		cfg.Registry.Bootstrap = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.ServiceName == "" {
		return errors.New("service_name is required")
	}

	direct := cfg.Registry.Host != "" || cfg.Registry.Port != 0
	switch {
	case direct && cfg.Registry.Bootstrap != "":
		return errors.New("registry: host/port and bootstrap are mutually exclusive")
	case direct && (cfg.Registry.Host == "" || cfg.Registry.Port <= 0 || cfg.Registry.Port > 65535):
		return fmt.Errorf("registry: need host and port in 1-65535, got %q:%d", cfg.Registry.Host, cfg.Registry.Port)
	case !direct && cfg.Registry.Bootstrap == "":
		return errors.New("registry: either host/port or bootstrap is required")
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func (cfg Config) ClientOptions(logger zerolog.Logger) []regclient.Option {
	opts := []regclient.Option{regclient.WithLogger(logger)}

	if cfg.HeartbeatPeriod != 0 {
		opts = append(opts, regclient.WithHeartbeatPeriod(cfg.HeartbeatPeriod))
	}
	if cfg.ActiveWindow != nil {
		opts = append(opts, regclient.WithActiveWindow(cfg.ActiveWindow.StartHour, cfg.ActiveWindow.EndHour))
	}
	if cfg.AdminAddr != "" {
		opts = append(opts, regclient.WithAdminAddr(cfg.AdminAddr))
	}
	if cfg.BadgerDir != "" {
		opts = append(opts, regclient.WithBadgerDir(cfg.BadgerDir))
	}
	if cfg.XsetDisplay != "" {
		opts = append(opts, regclient.WithXsetDisplay(cfg.XsetDisplay))
	}
	if cfg.SelfIP != "" {
		opts = append(opts, regclient.WithSelfIP(cfg.SelfIP))
	}
	if cfg.Identifier != "" {
		opts = append(opts, regclient.WithIdentifier(cfg.Identifier))
	}

	return opts
}
