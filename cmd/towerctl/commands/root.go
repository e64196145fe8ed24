package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	region     string
	partition  string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "towerctl",
		Short: "towerctl - Landing Zone lifecycle controller",
		Long: `towerctl deploys and maintains an AWS Control Tower Landing Zone from a
declarative configuration file.

Features:
  - Idempotent deploy that creates, updates, or resets as needed
  - Prerequisite setup (organization, shared accounts, roles, KMS keys)
  - Drift detection with automatic reset
  - Dry-run previews of every decision`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "landing-zone.yaml", "landing zone config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "home region of the landing zone")
	rootCmd.PersistentFlags().StringVar(&partition, "partition", "aws", "AWS partition")

	// Add subcommands
	rootCmd.AddCommand(newDeployCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
