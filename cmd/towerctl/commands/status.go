package commands

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/controltower"
	"github.com/spf13/cobra"

	"github.com/towerctl/towerctl/pkg/awscloud"
	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the deployed Landing Zone",
		Long: `Status reads the landing zone deployed in the organization and prints its
identifier, version, and drift state. It never mutates anything.`,
		Example: `  # Show the landing zone in the home region
  towerctl status --region us-east-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger, err := newCommandLogger()
			if err != nil {
				return err
			}

			awsCfg, err := awscloud.LoadConfig(ctx, region, "", nil)
			if err != nil {
				return err
			}

			metrics := telemetry.NewMetrics(telemetry.MetricsConfig{})
			retrier := engine.NewRetrier(engine.DefaultMaxAttempts)
			landingZones := awscloud.NewLandingZoneClient(controltower.NewFromConfig(awsCfg), retrier, logger, metrics)

			observed, err := landingZones.Find(ctx)
			if err != nil {
				return err
			}
			if !observed.Exists() {
				fmt.Println("No Landing Zone found.")
				return nil
			}

			fmt.Printf("Identifier:        %s\n", observed.Identifier)
			fmt.Printf("Status:            %s\n", observed.Status)
			fmt.Printf("Version:           %s\n", observed.Version)
			fmt.Printf("Latest version:    %s\n", observed.LatestAvailableVersion)
			fmt.Printf("Drift status:      %s\n", observed.DriftStatus)
			fmt.Printf("Governed regions:  %s\n", strings.Join(observed.GovernedRegions, ", "))
			return nil
		},
	}

	return cmd
}
