package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/controltower"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/spf13/cobra"

	"github.com/towerctl/towerctl/pkg/awscloud"
	"github.com/towerctl/towerctl/pkg/config"
	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

const landingZonePollInterval = 30 * time.Second

func newDeployCommand() *cobra.Command {
	var (
		dryRun          bool
		useExistingRole bool
		solutionID      string
		globalRegion    string
		maxAttempts     int
		enableMetrics   bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy or reconcile the Landing Zone",
		Long: `Deploy reconciles the configured landing zone against the one deployed in
the organization, then performs whichever operation closes the gap:

  - No landing zone found: set up prerequisites and create one
  - Drifted or failed: reset it back to the configured state
  - Settings changed: update it in place
  - Nothing changed: report and exit without mutating anything

The command blocks until the provider reports the operation finished.`,
		Example: `  # Reconcile using the default config file
  towerctl deploy --region us-east-1

  # Preview the decision without touching anything
  towerctl deploy --region us-east-1 --dry-run

  # Deploy into GovCloud with an attribution tag
  towerctl deploy --region us-gov-west-1 --partition aws-us-gov --solution-id SO0089`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger, err := newCommandLogger()
			if err != nil {
				return err
			}
			metrics := telemetry.NewMetrics(telemetry.MetricsConfig{
				Enabled:   enableMetrics,
				Namespace: "towerctl",
			})

			desired, err := config.NewLoader().LoadFile(configPath)
			if err != nil {
				return err
			}

			orch, err := buildOrchestrator(ctx, logger, metrics, maxAttempts, solutionID, globalRegion)
			if err != nil {
				return err
			}

			message, err := orch.Run(ctx, &engine.Request{
				Operation:       "deploy",
				Partition:       partition,
				Region:          region,
				Configuration:   desired,
				DryRun:          dryRun,
				UseExistingRole: useExistingRole,
			})
			if err != nil {
				return err
			}

			fmt.Println(message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the decision without executing it")
	cmd.Flags().BoolVar(&useExistingRole, "use-existing-role", false, "reuse pre-provisioned service roles")
	cmd.Flags().StringVar(&solutionID, "solution-id", "", "solution identifier for session attribution")
	cmd.Flags().StringVar(&globalRegion, "global-region", "", "region for global service calls")
	cmd.Flags().IntVar(&maxAttempts, "max-retry-attempts", engine.DefaultMaxAttempts, "retry ceiling for throttled provider calls")
	cmd.Flags().BoolVar(&enableMetrics, "metrics", false, "collect Prometheus metrics")

	return cmd
}

// buildOrchestrator wires the provider clients behind the engine
// interfaces. Organization and IAM calls go to the global region when
// one is configured; everything else stays in the home region.
func buildOrchestrator(
	ctx context.Context,
	logger *telemetry.Logger,
	metrics *telemetry.Metrics,
	maxAttempts int,
	solutionID string,
	globalRegion string,
) (*engine.Orchestrator, error) {
	awsCfg, err := awscloud.LoadConfig(ctx, region, solutionID, nil)
	if err != nil {
		return nil, err
	}
	globalCfg := awsCfg
	if globalRegion != "" {
		globalCfg.Region = globalRegion
	}

	retrier := engine.NewRetrier(maxAttempts)
	retrier.OnRetry = func() { metrics.RecordRetry("aws") }
	landingZones := awscloud.NewLandingZoneClient(controltower.NewFromConfig(awsCfg), retrier, logger, metrics)
	orgs := awscloud.NewOrganizationsClient(organizations.NewFromConfig(globalCfg), retrier, logger)
	roles := awscloud.NewRoleClient(iam.NewFromConfig(globalCfg), retrier, logger)
	keys := awscloud.NewKeyClient(kms.NewFromConfig(awsCfg), retrier, logger)

	prereqs := engine.NewPrerequisiteOrchestrator(orgs, roles, keys, logger)

	// Landing zone operations run for a long time; poll until a terminal
	// status instead of capping attempts.
	poller := engine.NewPoller(landingZonePollInterval, 0)

	return engine.NewOrchestrator(landingZones, prereqs, poller, logger, metrics), nil
}

func newCommandLogger() (*telemetry.Logger, error) {
	cfg := telemetry.DefaultLoggingConfig()
	if verbose {
		cfg.Level = "debug"
	}
	return telemetry.NewLogger(cfg)
}
