package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Configuration struct {
	Server struct {
		Host string `envconfig:"SERVER_HOST" default:""`
		Port string `envconfig:"SERVER_PORT" default:"3000"`
	}
	CORS struct {
		Origins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	}
	Matchmaking struct {
		Interval time.Duration `envconfig:"MATCHMAKING_INTERVAL" default:"1s"`
	}
	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}
}

// Addr is the listen address for the HTTP server.
func (c *Configuration) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func InitConfig() (*Configuration, error) {
	cfg := &Configuration{}
	err := envconfig.Process("", cfg)
	return cfg, err
}
