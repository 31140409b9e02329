// Package app wires the question pipeline shared by every transport.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"staff-assistant/internal/common/config"
	"staff-assistant/internal/common/database"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/common/observability"
	"staff-assistant/internal/normalize"
	"staff-assistant/internal/query"
	answerquestion "staff-assistant/internal/workers/assistant/answer-question"
	querypostgresql "staff-assistant/internal/workers/data-access/query-postgresql"
	parseuserintent "staff-assistant/internal/workers/nlu/parse-user-intent"
)

// App holds the connected pipeline. Redis is nil when the cache is disabled
// or unreachable.
type App struct {
	Config *config.Config
	Logger logger.Logger
	Obs    *observability.Observability

	Postgres *database.PostgresClient
	Redis    *database.RedisClient
	Gateway  *database.Gateway

	NLU     *parseuserintent.Handler
	Queries *querypostgresql.Handler
	Answers *answerquestion.Handler

	zapLog *zap.Logger
}

// NewLogger builds the zap logger from the logging section.
func NewLogger(cfg *config.Config) (*zap.Logger, logger.Logger) {
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)
	return zapLog, logger.NewZapAdapter(zapLog)
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay
	if maxRetries < 1 {
		maxRetries = 1
	}

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// New connects to PostgreSQL (and Redis when enabled) and builds the
// question pipeline. connectAttempts bounds the startup retries.
func New(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, connectAttempts int) (*App, error) {
	log := logger.NewZapAdapter(zapLog)
	a := &App{
		Config: cfg,
		Logger: log,
		Obs:    observability.New(cfg.App.Name, log),
		zapLog: zapLog,
	}

	err := retryWithBackoff(func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		a.Postgres = pg
		return nil
	}, connectAttempts, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		a.Close()
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")

	a.Gateway = database.NewGateway(a.Postgres.GetDB(), database.GatewayOptions{
		AcquireRetries: cfg.Database.Postgres.AcquireRetries,
		QueryTimeout:   config.GetDuration(cfg.Query.Timeout),
	}, log)

	nluConfig, err := parseuserintent.LoadConfig(cfg.NLU)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Database.Redis.Enabled {
		a.Redis = database.NewRedis(cfg.Database.Redis)
		if err := a.Redis.Ping(ctx); err != nil {
			// the cache is optional; parses go straight to the NLU server
			zapLog.Warn("Redis unavailable, NLU cache disabled", zap.Error(err))
			_ = a.Redis.Close()
			a.Redis = nil
		} else {
			zapLog.Info("Redis connected successfully")
		}
	}
	if a.Redis != nil {
		a.NLU = parseuserintent.NewHandler(nluConfig, a.Redis.Client, log)
	} else {
		a.NLU = parseuserintent.NewHandler(nluConfig, nil, log)
	}

	a.Queries = querypostgresql.NewHandler(
		querypostgresql.LoadConfig(cfg.Query),
		NewCompiler(cfg, log),
		normalize.New(cfg.NLU.StemmedEntities, log),
		a.Gateway,
		log,
	)

	a.Answers = answerquestion.NewHandler(
		answerquestion.LoadConfig(config.GetWorkerConfig(cfg, answerquestion.TaskType)),
		a.NLU, a.Queries, a.Obs, log,
	)
	return a, nil
}

// NewCompiler resolves "today" in the configured timezone.
func NewCompiler(cfg *config.Config, log logger.Logger) *query.Compiler {
	columns := cfg.Query.TaskColumns
	loc := cfg.Location()
	return query.NewCompiler(query.Options{
		TaskDescription: columns.Description,
		TaskStatus:      columns.Status,
		TaskPriority:    columns.Priority,
		TaskTags:        columns.Tags,
	}, log).WithClock(func() time.Time { return time.Now().In(loc) })
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Postgres != nil {
		_ = a.Postgres.Close()
	}
	if err := a.Obs.Shutdown(context.Background()); err != nil {
		a.zapLog.Warn("observability shutdown failed", zap.Error(err))
	}
}
