package awscloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

// serviceRole declares one delegated role the landing zone service
// requires in the management account.
type serviceRole struct {
	name             string
	trustedService   string
	managedPolicyArn string
	inlinePolicy     string
}

// serviceRoles are the three delegated roles created during first-time
// setup.
var serviceRoles = []serviceRole{
	{
		name:             "AWSControlTowerAdmin",
		trustedService:   "controltower.amazonaws.com",
		managedPolicyArn: "arn:aws:iam::aws:policy/service-role/AWSControlTowerServiceRolePolicy",
		inlinePolicy:     `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"ec2:DescribeAvailabilityZones","Resource":"*"}]}`,
	},
	{
		name:           "AWSControlTowerCloudTrailRole",
		trustedService: "cloudtrail.amazonaws.com",
		inlinePolicy:   `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"logs:CreateLogStream","Resource":"arn:aws:logs:*:*:log-group:aws-controltower/CloudTrailLogs:*"},{"Effect":"Allow","Action":"logs:PutLogEvents","Resource":"arn:aws:logs:*:*:log-group:aws-controltower/CloudTrailLogs:*"}]}`,
	},
	{
		name:           "AWSControlTowerStackSetRole",
		trustedService: "cloudformation.amazonaws.com",
		inlinePolicy:   `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"sts:AssumeRole","Resource":"arn:aws:iam::*:role/AWSControlTowerExecution"}]}`,
	},
}

// RoleClient implements engine.RoleService on IAM.
type RoleClient struct {
	client  IAMAPI
	retrier *engine.Retrier
	logger  *telemetry.Logger
}

// NewRoleClient creates a role client.
func NewRoleClient(client IAMAPI, retrier *engine.Retrier, logger *telemetry.Logger) *RoleClient {
	return &RoleClient{
		client:  client,
		retrier: retrier,
		logger:  logger.NewComponentLogger("iam"),
	}
}

// EnsureServiceRoles creates the three delegated roles the landing zone
// service requires, skipping those that already exist.
func (c *RoleClient) EnsureServiceRoles(ctx context.Context) error {
	for _, role := range serviceRoles {
		exists, err := c.roleExists(ctx, role.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := c.createRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

// roleExists translates a "does not exist" lookup failure into a typed
// absence instead of propagating it.
func (c *RoleClient) roleExists(ctx context.Context, name string) (bool, error) {
	err := c.retrier.Do(ctx, func() error {
		_, callErr := c.client.GetRole(ctx, &iam.GetRoleInput{
			RoleName: aws.String(name),
		})
		return callErr
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NoSuchEntityException
	if errors.As(err, &notFound) || strings.Contains(err.Error(), "does not exist") {
		return false, nil
	}
	return false, err
}

func (c *RoleClient) createRole(ctx context.Context, role serviceRole) error {
	c.logger.WithField("role", role.name).Info("Creating service role")

	trustPolicy := fmt.Sprintf(
		`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"%s"},"Action":"sts:AssumeRole"}]}`,
		role.trustedService)

	err := c.retrier.Do(ctx, func() error {
		_, callErr := c.client.CreateRole(ctx, &iam.CreateRoleInput{
			RoleName:                 aws.String(role.name),
			AssumeRolePolicyDocument: aws.String(trustPolicy),
			Path:                     aws.String("/service-role/"),
		})
		return callErr
	})
	if err != nil {
		return err
	}

	if role.managedPolicyArn != "" {
		err = c.retrier.Do(ctx, func() error {
			_, callErr := c.client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
				RoleName:  aws.String(role.name),
				PolicyArn: aws.String(role.managedPolicyArn),
			})
			return callErr
		})
		if err != nil {
			return err
		}
	}

	if role.inlinePolicy != "" {
		err = c.retrier.Do(ctx, func() error {
			_, callErr := c.client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
				RoleName:       aws.String(role.name),
				PolicyName:     aws.String(role.name + "Policy"),
				PolicyDocument: aws.String(role.inlinePolicy),
			})
			return callErr
		})
		if err != nil {
			return err
		}
	}

	return nil
}
