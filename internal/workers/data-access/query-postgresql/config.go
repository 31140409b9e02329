// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import (
	"time"

	"staff-assistant/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg config.QueryConfig) *Config {
	return &Config{
		Timeout: config.GetDuration(cfg.Timeout),
	}
}
