// cmd/assistant/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"staff-assistant/internal/common/config"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:           "assistant",
	Short:         "Staff assistant: answers questions about colleagues, events, birthdays and tasks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (default: configs/config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.LoadFromFile(configFlag)
	}
	return config.Load()
}
