// internal/common/config/config.go
package config

import (
	"fmt"
	"net/url"
)

// Config is the assistant configuration.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Database DatabaseConfig          `mapstructure:"database"`
	NLU      NLUConfig               `mapstructure:"nlu"`
	Query    QueryConfig             `mapstructure:"query"`
	Telegram TelegramConfig          `mapstructure:"telegram"`
	HTTP     HTTPConfig              `mapstructure:"http"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// Timezone used to compute "today" for date phrases.
	Timezone string `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	AcquireRetries int    `mapstructure:"acquire_retries"`
	ConnectTimeout int    `mapstructure:"connect_timeout"` // milliseconds
}

// GetDSN returns the lib/pq connection string.
func (p PostgresConfig) GetDSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
	if p.ConnectTimeout > 0 {
		// lib/pq takes whole seconds
		secs := p.ConnectTimeout / 1000
		if secs == 0 {
			secs = 1
		}
		dsn += fmt.Sprintf(" connect_timeout=%d", secs)
	}
	return dsn
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NLUConfig points at the Rasa HTTP server.
type NLUConfig struct {
	BaseURL       string  `mapstructure:"base_url"`
	ParsePath     string  `mapstructure:"parse_path"`
	Timeout       int     `mapstructure:"timeout"` // milliseconds
	MaxRetries    int     `mapstructure:"max_retries"`
	CacheTTL      int     `mapstructure:"cache_ttl"` // milliseconds, 0 disables caching
	MinConfidence float64 `mapstructure:"min_confidence"`
	// StemmedEntities overrides the entity types passed through the stemmer.
	StemmedEntities []string `mapstructure:"stemmed_entities"`
}

// ParseURL joins BaseURL and ParsePath.
func (n NLUConfig) ParseURL() (string, error) {
	base, err := url.Parse(n.BaseURL)
	if err != nil {
		return "", fmt.Errorf("nlu.base_url: %w", err)
	}
	return base.JoinPath(n.ParsePath).String(), nil
}

type QueryConfig struct {
	Timeout     int               `mapstructure:"timeout"` // milliseconds
	TaskColumns TaskColumnsConfig `mapstructure:"task_columns"`
}

// TaskColumnsConfig enables optional Task columns present in some schemas.
type TaskColumnsConfig struct {
	Description bool `mapstructure:"description"`
	Status      bool `mapstructure:"status"`
	Priority    bool `mapstructure:"priority"`
	Tags        bool `mapstructure:"tags"`
}

type TelegramConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Token       string `mapstructure:"token"`
	APIURL      string `mapstructure:"api_url"`
	PollTimeout int    `mapstructure:"poll_timeout"` // seconds, passed to getUpdates
	Timeout     int    `mapstructure:"timeout"`      // milliseconds
}

type HTTPConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the settings shared by every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
