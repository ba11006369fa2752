package httpapi

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the HTTP server settings, populated from PANELARC_*
// environment variables. Flags override individual fields after load.
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	DBPath          string        `envconfig:"DB_PATH" default:"panelarc.db"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// LoadConfig reads the server configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("PANELARC", &cfg); err != nil {
		return Config{}, fmt.Errorf("load server config: %w", err)
	}
	return cfg, nil
}
