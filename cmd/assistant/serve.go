// cmd/assistant/serve.go
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"staff-assistant/internal/app"
	"staff-assistant/internal/common/camunda"
	"staff-assistant/internal/common/config"
	"staff-assistant/internal/transport/httpapi"
	"staff-assistant/internal/transport/telegram"
	answerquestion "staff-assistant/internal/workers/assistant/answer-question"
	querypostgresql "staff-assistant/internal/workers/data-access/query-postgresql"
	parseuserintent "staff-assistant/internal/workers/nlu/parse-user-intent"
)

const shutdownTimeout = 15 * time.Second

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the enabled transports (Telegram bot, HTTP API, Zeebe workers)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	zapLog, log := app.NewLogger(cfg)
	defer func() { _ = zapLog.Sync() }()

	zapLog.Info("Starting staff assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("timezone", cfg.App.Timezone),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zapLog, 15)
	if err != nil {
		zapLog.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	var wg sync.WaitGroup

	// --- Zeebe workers ---
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		client, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda), log)
		if err != nil {
			zapLog.Error("zeebe client failed", zap.Error(err))
			return err
		}
		defer func() { _ = client.Close() }()
		zapLog.Info("Zeebe client connected successfully")

		for taskType, handler := range map[string]camunda.JobHandler{
			parseuserintent.TaskType: a.NLU,
			querypostgresql.TaskType: a.Queries,
			answerquestion.TaskType:  a.Answers,
		} {
			w := camunda.StartWorker(client.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log)
			if w != nil {
				workers = append(workers, w)
			}
		}
	}

	// --- HTTP API ---
	var server *httpapi.Server
	if cfg.HTTP.Enabled {
		checks := map[string]httpapi.Checker{"postgres": a.Gateway}
		if a.Redis != nil {
			checks["redis"] = a.Redis
		}
		server = httpapi.NewServer(cfg.HTTP, a.Answers, checks, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Start(); err != nil {
				zapLog.Error("HTTP server failed", zap.Error(err))
				stop()
			}
		}()
	}

	// --- Telegram ---
	if cfg.Telegram.Enabled {
		bot := telegram.NewBot(telegram.LoadConfig(cfg.Telegram), a.Answers, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bot.Run(ctx); err != nil {
				zapLog.Error("Telegram bot failed", zap.Error(err))
				stop()
			}
		}()
	}

	if server == nil && !cfg.Telegram.Enabled && len(workers) == 0 {
		zapLog.Warn("No transport enabled, nothing to serve")
		return nil
	}

	zapLog.Info("Staff assistant running",
		zap.Bool("telegram", cfg.Telegram.Enabled),
		zap.Bool("http", server != nil),
		zap.Int("workers", len(workers)),
	)

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLog.Warn("HTTP server shutdown failed", zap.Error(err))
		}
	}
	for _, w := range workers {
		w.Stop()
	}
	wg.Wait()

	zapLog.Info("Staff assistant stopped")
	return nil
}
