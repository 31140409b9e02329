// internal/workers/nlu/parse-user-intent/config.go
package parseuserintent

import (
	"time"

	"staff-assistant/internal/common/config"
)

type Config struct {
	ParseURL      string
	Timeout       time.Duration
	MaxRetries    int
	CacheTTL      time.Duration
	MinConfidence float64
}

func LoadConfig(cfg config.NLUConfig) (*Config, error) {
	parseURL, err := cfg.ParseURL()
	if err != nil {
		return nil, err
	}
	return &Config{
		ParseURL:      parseURL,
		Timeout:       config.GetDuration(cfg.Timeout),
		MaxRetries:    cfg.MaxRetries,
		CacheTTL:      config.GetDuration(cfg.CacheTTL),
		MinConfidence: cfg.MinConfidence,
	}, nil
}
