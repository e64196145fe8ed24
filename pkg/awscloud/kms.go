package awscloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

// KeyClient implements engine.KeyService on KMS.
type KeyClient struct {
	client  KMSAPI
	retrier *engine.Retrier
	logger  *telemetry.Logger
}

// NewKeyClient creates a key client.
func NewKeyClient(client KMSAPI, retrier *engine.Retrier, logger *telemetry.Logger) *KeyClient {
	return &KeyClient{
		client:  client,
		retrier: retrier,
		logger:  logger.NewComponentLogger("kms"),
	}
}

// EnsureKey returns the ARN of the aliased customer-managed key,
// creating key and alias when absent.
func (c *KeyClient) EnsureKey(ctx context.Context, alias string) (string, error) {
	aliasName := "alias/" + alias

	var describe *kms.DescribeKeyOutput
	err := c.retrier.Do(ctx, func() error {
		var callErr error
		describe, callErr = c.client.DescribeKey(ctx, &kms.DescribeKeyInput{
			KeyId: aws.String(aliasName),
		})
		return callErr
	})
	if err == nil {
		if describe.KeyMetadata == nil || describe.KeyMetadata.Arn == nil {
			return "", engine.NewServiceError(
				fmt.Sprintf("key %s is missing its ARN", aliasName), nil)
		}
		return aws.ToString(describe.KeyMetadata.Arn), nil
	}

	var notFound *types.NotFoundException
	if !errors.As(err, &notFound) {
		return "", err
	}

	c.logger.WithField("alias", aliasName).Info("Creating encryption key")
	var created *kms.CreateKeyOutput
	err = c.retrier.Do(ctx, func() error {
		var callErr error
		created, callErr = c.client.CreateKey(ctx, &kms.CreateKeyInput{
			Description: aws.String(fmt.Sprintf("Landing zone key %s", alias)),
		})
		return callErr
	})
	if err != nil {
		return "", err
	}
	if created.KeyMetadata == nil || created.KeyMetadata.Arn == nil {
		return "", engine.NewServiceError("created key is missing its ARN", nil)
	}

	err = c.retrier.Do(ctx, func() error {
		_, callErr := c.client.CreateAlias(ctx, &kms.CreateAliasInput{
			AliasName:   aws.String(aliasName),
			TargetKeyId: created.KeyMetadata.KeyId,
		})
		return callErr
	})
	if err != nil {
		return "", err
	}

	return aws.ToString(created.KeyMetadata.Arn), nil
}
