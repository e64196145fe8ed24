package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/towerctl/towerctl/pkg/config"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the landing zone configuration",
		Long: `Validate parses the configuration file and checks every field constraint
without contacting the provider.`,
		Example: `  # Validate the default config file
  towerctl validate

  # Validate a specific file
  towerctl validate -c environments/prod.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			desired, err := config.NewLoader().LoadFile(configPath)
			if err != nil {
				return err
			}

			fmt.Printf("Configuration is valid (version %s, %d governed regions)\n",
				desired.Version, len(desired.GovernedRegions))
			return nil
		},
	}

	return cmd
}
