// cmd/assistant/compile.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"staff-assistant/internal/app"
	"staff-assistant/internal/common/config"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/models"
	"staff-assistant/internal/normalize"
)

func init() {
	compileCmd := &cobra.Command{
		Use:   "compile INTENT [ENTITY=VALUE...]",
		Short: "Print the SQL and arguments built for an intent without touching the database",
		Example: `  assistant compile find_birthday department=Разработки
  assistant compile search_event date=завтра`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ents, err := parseEntityArgs(args[1:])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "config unavailable, using defaults: %v\n", err)
				cfg = &config.Config{}
				cfg.Query.TaskColumns.Description = true
			}
			return runCompile(cfg, args[0], ents, os.Stdout)
		},
	}
	rootCmd.AddCommand(compileCmd)
}

func parseEntityArgs(args []string) ([]models.Entity, error) {
	ents := make([]models.Entity, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("entity %q must be ENTITY=VALUE", arg)
		}
		ents = append(ents, models.Entity{Entity: name, Value: value})
	}
	return ents, nil
}

func runCompile(cfg *config.Config, intent string, ents []models.Entity, out io.Writer) error {
	log := logger.NewNoOpLogger()
	dict := models.NewEntityDictionary(normalize.New(cfg.NLU.StemmedEntities, log).Entities(ents))

	compiled, err := app.NewCompiler(cfg, log).Compile(intent, dict)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "-- kind: %s\n%s\n", compiled.Kind, compiled.SQL)
	for i, arg := range compiled.Args {
		_, _ = fmt.Fprintf(out, "-- $%d = %v\n", i+1, arg)
	}
	return nil
}
