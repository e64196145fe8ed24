package awscloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

// createAccountPollInterval is the fixed delay between polls of an
// asynchronous member-account creation.
const createAccountPollInterval = 10 * time.Second

// createAccountPollAttempts bounds account-creation polling.
const createAccountPollAttempts = 60

// OrganizationsClient implements engine.OrganizationService on the
// Organizations directory.
type OrganizationsClient struct {
	client  OrganizationsAPI
	retrier *engine.Retrier
	logger  *telemetry.Logger
}

// NewOrganizationsClient creates a directory client.
func NewOrganizationsClient(client OrganizationsAPI, retrier *engine.Retrier, logger *telemetry.Logger) *OrganizationsClient {
	return &OrganizationsClient{
		client:  client,
		retrier: retrier,
		logger:  logger.NewComponentLogger("organizations"),
	}
}

// ValidateOrganization verifies the organization exists with all
// features enabled and has exactly one root.
func (c *OrganizationsClient) ValidateOrganization(ctx context.Context) error {
	var describe *organizations.DescribeOrganizationOutput
	err := c.retrier.Do(ctx, func() error {
		var callErr error
		describe, callErr = c.client.DescribeOrganization(ctx, &organizations.DescribeOrganizationInput{})
		return callErr
	})
	if err != nil {
		return err
	}
	if describe.Organization == nil {
		return engine.NewServiceError("organization details missing from provider response", nil)
	}
	if describe.Organization.FeatureSet != types.OrganizationFeatureSetAll {
		return engine.NewInvalidInputError(
			"the organization must have all features enabled before a landing zone can be created")
	}

	if _, err := c.rootID(ctx); err != nil {
		return err
	}
	return nil
}

// rootID returns the id of the single organizational root. Zero or more
// than one root is a contract violation.
func (c *OrganizationsClient) rootID(ctx context.Context) (string, error) {
	var roots *organizations.ListRootsOutput
	err := c.retrier.Do(ctx, func() error {
		var callErr error
		roots, callErr = c.client.ListRoots(ctx, &organizations.ListRootsInput{})
		return callErr
	})
	if err != nil {
		return "", err
	}
	if len(roots.Roots) != 1 {
		return "", engine.NewServiceError(fmt.Sprintf(
			"expected exactly one organizational root, the provider returned %d",
			len(roots.Roots)), nil)
	}
	id := aws.ToString(roots.Roots[0].Id)
	if id == "" {
		return "", engine.NewServiceError("organizational root is missing its id", nil)
	}
	return id, nil
}

// FindAccountByEmail resolves an account id by case-insensitive email
// match against the paginated account list. Returns "" when no account
// matches.
func (c *OrganizationsClient) FindAccountByEmail(ctx context.Context, email string) (string, error) {
	var nextToken *string
	for {
		var page *organizations.ListAccountsOutput
		err := c.retrier.Do(ctx, func() error {
			var callErr error
			page, callErr = c.client.ListAccounts(ctx, &organizations.ListAccountsInput{
				NextToken: nextToken,
			})
			return callErr
		})
		if err != nil {
			return "", err
		}

		for _, account := range page.Accounts {
			if strings.EqualFold(aws.ToString(account.Email), email) {
				return aws.ToString(account.Id), nil
			}
		}

		if page.NextToken == nil {
			return "", nil
		}
		nextToken = page.NextToken
	}
}

// EnsureOrganizationalUnit returns the id of the named OU directly under
// the root, creating it when absent.
func (c *OrganizationsClient) EnsureOrganizationalUnit(ctx context.Context, name string) (string, error) {
	rootID, err := c.rootID(ctx)
	if err != nil {
		return "", err
	}

	var nextToken *string
	for {
		var page *organizations.ListOrganizationalUnitsForParentOutput
		err := c.retrier.Do(ctx, func() error {
			var callErr error
			page, callErr = c.client.ListOrganizationalUnitsForParent(ctx, &organizations.ListOrganizationalUnitsForParentInput{
				ParentId:  aws.String(rootID),
				NextToken: nextToken,
			})
			return callErr
		})
		if err != nil {
			return "", err
		}

		for _, ou := range page.OrganizationalUnits {
			if aws.ToString(ou.Name) == name {
				return aws.ToString(ou.Id), nil
			}
		}

		if page.NextToken == nil {
			break
		}
		nextToken = page.NextToken
	}

	c.logger.WithField("ou", name).Info("Creating organizational unit")
	var created *organizations.CreateOrganizationalUnitOutput
	err = c.retrier.Do(ctx, func() error {
		var callErr error
		created, callErr = c.client.CreateOrganizationalUnit(ctx, &organizations.CreateOrganizationalUnitInput{
			ParentId: aws.String(rootID),
			Name:     aws.String(name),
		})
		return callErr
	})
	if err != nil {
		return "", err
	}
	if created.OrganizationalUnit == nil || created.OrganizationalUnit.Id == nil {
		return "", engine.NewServiceError("created organizational unit is missing its id", nil)
	}
	return aws.ToString(created.OrganizationalUnit.Id), nil
}

// CreateAccount creates a member account and polls the asynchronous
// creation to completion, returning the new account id.
func (c *OrganizationsClient) CreateAccount(ctx context.Context, name, email string) (string, error) {
	var accountID string

	poller := engine.NewPoller(createAccountPollInterval, createAccountPollAttempts)
	_, err := poller.Run(ctx,
		func(ctx context.Context) (string, error) {
			var out *organizations.CreateAccountOutput
			err := c.retrier.Do(ctx, func() error {
				var callErr error
				out, callErr = c.client.CreateAccount(ctx, &organizations.CreateAccountInput{
					AccountName: aws.String(name),
					Email:       aws.String(email),
				})
				return callErr
			})
			if err != nil {
				return "", err
			}
			if out.CreateAccountStatus == nil {
				return "", nil
			}
			return aws.ToString(out.CreateAccountStatus.Id), nil
		},
		func(ctx context.Context, requestID string) (engine.OperationStatus, error) {
			var out *organizations.DescribeCreateAccountStatusOutput
			err := c.retrier.Do(ctx, func() error {
				var callErr error
				out, callErr = c.client.DescribeCreateAccountStatus(ctx, &organizations.DescribeCreateAccountStatusInput{
					CreateAccountRequestId: aws.String(requestID),
				})
				return callErr
			})
			if err != nil {
				return "", err
			}
			if out.CreateAccountStatus == nil {
				return "", nil
			}
			switch out.CreateAccountStatus.State {
			case types.CreateAccountStateSucceeded:
				accountID = aws.ToString(out.CreateAccountStatus.AccountId)
				return engine.OperationSucceeded, nil
			case types.CreateAccountStateFailed:
				return engine.OperationFailed, nil
			case types.CreateAccountStateInProgress:
				return engine.OperationInProgress, nil
			default:
				return "", nil
			}
		},
	)
	if err != nil {
		return "", err
	}
	if accountID == "" {
		return "", engine.NewServiceError(
			fmt.Sprintf("account creation for %s finished without an account id", name), nil)
	}
	return accountID, nil
}

// MoveAccount moves an account from its current parent to the given
// organizational unit. Already being there is a no-op.
func (c *OrganizationsClient) MoveAccount(ctx context.Context, accountID, ouID string) error {
	var parents *organizations.ListParentsOutput
	err := c.retrier.Do(ctx, func() error {
		var callErr error
		parents, callErr = c.client.ListParents(ctx, &organizations.ListParentsInput{
			ChildId: aws.String(accountID),
		})
		return callErr
	})
	if err != nil {
		return err
	}
	if len(parents.Parents) == 0 {
		return engine.NewServiceError(
			fmt.Sprintf("account %s has no parent in the organization", accountID), nil)
	}

	sourceID := aws.ToString(parents.Parents[0].Id)
	if sourceID == ouID {
		return nil
	}

	c.logger.WithField("account", accountID).WithField("ou", ouID).Info("Moving account")
	return c.retrier.Do(ctx, func() error {
		_, callErr := c.client.MoveAccount(ctx, &organizations.MoveAccountInput{
			AccountId:           aws.String(accountID),
			SourceParentId:      aws.String(sourceID),
			DestinationParentId: aws.String(ouID),
		})
		return callErr
	})
}
