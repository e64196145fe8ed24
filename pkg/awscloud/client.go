package awscloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/towerctl/towerctl/pkg/engine"
)

// LoadConfig builds an AWS client configuration for the given region.
// A non-empty appID is sent as the user-agent application id so provider
// calls carry solution attribution. When creds is non-nil the
// assumed-role credentials override the ambient identity; a nil creds
// means the caller's own identity is already correct for the target
// account.
func LoadConfig(ctx context.Context, region, appID string, creds *engine.Credentials) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if appID != "" {
		opts = append(opts, config.WithAppID(appID))
	}
	if creds != nil {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return cfg, nil
}
