// cmd/assistant/registry.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"staff-assistant/internal/app"
	"staff-assistant/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func init() {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Activity registry of the Zeebe job types",
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the activity registry for the configured workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reg, err := app.Activities(cfg, time.Now())
			if err != nil {
				return err
			}
			if err := reg.Save(out); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "Wrote %d activities to %s\n", len(reg.Activities), out)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&out, "out", defaultRegistryPath, "output path")
	registryCmd.AddCommand(exportCmd)

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a registry file for missing or duplicate activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			_, _ = fmt.Fprintln(os.Stdout, "Registry validation passed.")
			return nil
		},
	}
	validateCmd.Flags().StringVar(&path, "path", defaultRegistryPath, "registry file")
	registryCmd.AddCommand(validateCmd)

	rootCmd.AddCommand(registryCmd)
}
