package awscloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/controltower"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

// Baseline polling is bounded: 30 attempts at 2-minute intervals, about
// an hour of wall clock.
const (
	baselinePollInterval = 2 * time.Minute
	baselinePollAttempts = 30
)

// BaselineClient enables provider-managed baselines on organizational
// units. It shares the generic operation poller with the landing zone
// workflow.
type BaselineClient struct {
	client  ControlTowerAPI
	retrier *engine.Retrier
	poller  *engine.Poller
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// NewBaselineClient creates a baseline client.
func NewBaselineClient(client ControlTowerAPI, retrier *engine.Retrier, logger *telemetry.Logger, metrics *telemetry.Metrics) *BaselineClient {
	return &BaselineClient{
		client:  client,
		retrier: retrier,
		poller:  engine.NewPoller(baselinePollInterval, baselinePollAttempts),
		logger:  logger.NewComponentLogger("baseline"),
		metrics: metrics,
	}
}

// FindBaseline resolves a baseline ARN by name from the available
// baseline list. Returns "" when no baseline matches.
func (c *BaselineClient) FindBaseline(ctx context.Context, name string) (string, error) {
	var nextToken *string
	for {
		var page *controltower.ListBaselinesOutput
		err := c.retrier.Do(ctx, func() error {
			var callErr error
			page, callErr = c.client.ListBaselines(ctx, &controltower.ListBaselinesInput{
				NextToken: nextToken,
			})
			return callErr
		})
		if err != nil {
			return "", err
		}

		for _, baseline := range page.Baselines {
			if aws.ToString(baseline.Name) == name {
				return aws.ToString(baseline.Arn), nil
			}
		}

		if page.NextToken == nil {
			return "", nil
		}
		nextToken = page.NextToken
	}
}

// IsEnabled reports whether the baseline is already enabled on the
// target, walking the paginated enabled-baseline list.
func (c *BaselineClient) IsEnabled(ctx context.Context, baselineArn, targetArn string) (bool, error) {
	var nextToken *string
	for {
		var page *controltower.ListEnabledBaselinesOutput
		err := c.retrier.Do(ctx, func() error {
			var callErr error
			page, callErr = c.client.ListEnabledBaselines(ctx, &controltower.ListEnabledBaselinesInput{
				NextToken: nextToken,
			})
			return callErr
		})
		if err != nil {
			return false, err
		}

		for _, enabled := range page.EnabledBaselines {
			if aws.ToString(enabled.BaselineIdentifier) == baselineArn &&
				aws.ToString(enabled.TargetIdentifier) == targetArn {
				return true, nil
			}
		}

		if page.NextToken == nil {
			return false, nil
		}
		nextToken = page.NextToken
	}
}

// Enable enables the baseline on the target and polls the registration
// to a terminal state. Already-enabled targets are a no-op.
func (c *BaselineClient) Enable(ctx context.Context, baselineArn, version, targetArn string) error {
	enabled, err := c.IsEnabled(ctx, baselineArn, targetArn)
	if err != nil {
		return err
	}
	if enabled {
		c.logger.WithField("target", targetArn).Debug("Baseline already enabled")
		return nil
	}

	c.logger.WithField("target", targetArn).Infof("Enabling baseline %s", baselineArn)
	_, err = c.poller.Run(ctx,
		func(ctx context.Context) (string, error) {
			var out *controltower.EnableBaselineOutput
			err := c.retrier.Do(ctx, func() error {
				var callErr error
				out, callErr = c.client.EnableBaseline(ctx, &controltower.EnableBaselineInput{
					BaselineIdentifier: aws.String(baselineArn),
					BaselineVersion:    aws.String(version),
					TargetIdentifier:   aws.String(targetArn),
				})
				return callErr
			})
			if err != nil {
				return "", err
			}
			return aws.ToString(out.OperationIdentifier), nil
		},
		func(ctx context.Context, operationID string) (engine.OperationStatus, error) {
			c.metrics.RecordPoll("enable_baseline")
			var out *controltower.GetBaselineOperationOutput
			err := c.retrier.Do(ctx, func() error {
				var callErr error
				out, callErr = c.client.GetBaselineOperation(ctx, &controltower.GetBaselineOperationInput{
					OperationIdentifier: aws.String(operationID),
				})
				return callErr
			})
			if err != nil {
				return "", err
			}
			if out.BaselineOperation == nil {
				return "", nil
			}
			return engine.OperationStatus(out.BaselineOperation.Status), nil
		},
	)
	if err != nil {
		return fmt.Errorf("baseline registration on %s failed: %w", targetArn, err)
	}
	return nil
}
