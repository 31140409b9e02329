// cmd/assistant/ask.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"staff-assistant/internal/app"
)

func init() {
	var jsonOut bool
	askCmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Answer one question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			zapLog, _ := app.NewLogger(cfg)
			defer func() { _ = zapLog.Sync() }()

			ctx := context.Background()
			a, err := app.New(ctx, cfg, zapLog, 1)
			if err != nil {
				return err
			}
			defer a.Close()

			reply := a.Answers.Respond(ctx, "cli", strings.Join(args, " "))
			if reply.Err != nil {
				zapLog.Debug("question failed", zap.Error(reply.Err))
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"answer":   reply.Text,
					"intent":   reply.Intent,
					"rowCount": reply.RowCount,
					"outcome":  reply.Outcome,
				})
			}
			_, _ = fmt.Fprintln(os.Stdout, reply.Text)
			return nil
		},
	}
	askCmd.Flags().BoolVar(&jsonOut, "json", false, "print the reply with its intent and outcome as JSON")
	rootCmd.AddCommand(askCmd)
}
