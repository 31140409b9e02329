// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "ASSISTANT"

// Load reads configs/config.yaml, merges config.<environment>.yaml when present
// and applies ASSISTANT_* environment overrides.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName("config." + environment(v))
	_ = v.MergeInConfig() // overlay is optional

	return decode(v)
}

// LoadFromFile loads configuration from an explicit path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	// zero values of these flags are meaningful, so applyDefaults cannot set them
	v.SetDefault("query.task_columns.description", true)
	v.SetDefault("database.redis.enabled", true)
	v.SetDefault("http.enabled", true)
	return v
}

// AutomaticEnv only resolves keys viper already knows about; keys that may be
// absent from the YAML file are bound explicitly.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.environment",
		"app.timezone",
		"database.postgres.host",
		"database.postgres.port",
		"database.postgres.database",
		"database.postgres.user",
		"database.postgres.password",
		"database.redis.address",
		"database.redis.password",
		"nlu.base_url",
		"telegram.enabled",
		"telegram.token",
		"http.enabled",
		"http.address",
		"camunda.enabled",
		"camunda.broker_address",
		"logging.level",
		"logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func environment(v *viper.Viper) string {
	if env := v.GetString("app.environment"); env != "" {
		return env
	}
	return "development"
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found from the working directory up to the module root.
func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "staff-assistant"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Europe/Moscow"
	}

	pg := &cfg.Database.Postgres
	if pg.Port == 0 {
		pg.Port = 5432
	}
	if pg.MaxConnections == 0 {
		pg.MaxConnections = 10
	}
	if pg.MaxIdle == 0 {
		pg.MaxIdle = 2
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}
	if pg.AcquireRetries == 0 {
		pg.AcquireRetries = 3
	}
	if pg.ConnectTimeout == 0 {
		pg.ConnectTimeout = 5000
	}

	if cfg.NLU.ParsePath == "" {
		cfg.NLU.ParsePath = "/model/parse"
	}
	if cfg.NLU.Timeout == 0 {
		cfg.NLU.Timeout = 5000
	}
	if cfg.NLU.MaxRetries == 0 {
		cfg.NLU.MaxRetries = 2
	}

	if cfg.Query.Timeout == 0 {
		cfg.Query.Timeout = 10000
	}

	if cfg.Telegram.APIURL == "" {
		cfg.Telegram.APIURL = "https://api.telegram.org"
	}
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 30
	}
	if cfg.Telegram.Timeout == 0 {
		cfg.Telegram.Timeout = 10000
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15000
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	pg := cfg.Database.Postgres
	if pg.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if pg.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if pg.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.NLU.BaseURL == "" {
		return fmt.Errorf("nlu.base_url is required")
	}
	if _, err := cfg.NLU.ParseURL(); err != nil {
		return err
	}
	if cfg.NLU.MinConfidence < 0 || cfg.NLU.MinConfidence > 1 {
		return fmt.Errorf("nlu.min_confidence must be within [0, 1]")
	}
	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}
	if cfg.Telegram.Enabled && cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required when telegram is enabled")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the worker section, or defaults when it is absent.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}

// Location resolves app.timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
