package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig configures the HTTP server started by the serve command.
// It is read from the environment so deployments can override it without
// touching the rota config file.
type ServerConfig struct {
	Host            string `env:"HOST" envDefault:"127.0.0.1"`
	Port            int    `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`
	ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10" validate:"min=1"`
	WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15" validate:"min=1"`
	IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60" validate:"min=1"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10" validate:"min=1"`
}

// LoadServerConfig reads SERVER_* environment variables
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "SERVER_"}); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("failed to parse server config: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("server config validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

func (s *ServerConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Second
}

func (s *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}
