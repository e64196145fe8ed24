package awscloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

// CredentialRequest describes the environment a credential set must be
// valid for. Exactly one of AssumeRoleName and AssumeRoleArn must be
// supplied; Partition is required when only a role name is given.
type CredentialRequest struct {
	AccountID      string
	Region         string
	SolutionTag    string
	Partition      string
	AssumeRoleName string
	AssumeRoleArn  string
	SessionName    string
}

// CredentialResolver resolves the credential set needed to act in a
// target account, short-circuiting when the caller is already there.
type CredentialResolver struct {
	client  STSAPI
	retrier *engine.Retrier
	logger  *telemetry.Logger
}

// NewCredentialResolver creates a resolver over the given STS client.
func NewCredentialResolver(client STSAPI, retrier *engine.Retrier, logger *telemetry.Logger) *CredentialResolver {
	return &CredentialResolver{
		client:  client,
		retrier: retrier,
		logger:  logger.NewComponentLogger("credentials"),
	}
}

// Resolve returns the credentials for the requested environment, or nil
// when the caller's current identity already lives in the target account
// and no role assumption is needed.
func (r *CredentialResolver) Resolve(ctx context.Context, req CredentialRequest) (*engine.Credentials, error) {
	roleArn, roleAccount, err := r.effectiveRole(req)
	if err != nil {
		return nil, err
	}

	var identity *sts.GetCallerIdentityOutput
	err = r.retrier.Do(ctx, func() error {
		var callErr error
		identity, callErr = r.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	// Same account: the ambient identity is already correct, skip the
	// role assumption entirely.
	if aws.ToString(identity.Account) == roleAccount {
		r.logger.WithField("account", roleAccount).Debug("Caller already in target account, no credential override")
		return nil, nil
	}

	sessionName := req.SessionName
	if sessionName == "" {
		prefix := req.SolutionTag
		if prefix == "" {
			prefix = "towerctl"
		}
		sessionName = fmt.Sprintf("%s-%s", prefix, uuid.NewString())
	}

	var out *sts.AssumeRoleOutput
	err = r.retrier.Do(ctx, func() error {
		var callErr error
		out, callErr = r.client.AssumeRole(ctx, &sts.AssumeRoleInput{
			RoleArn:         aws.String(roleArn),
			RoleSessionName: aws.String(sessionName),
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	return validateCredentials(out, roleArn)
}

// ResolverFor adapts the resolver to the engine's bulk resolution
// callback, fixing the role inputs shared by every target environment.
func (r *CredentialResolver) ResolverFor(partition, assumeRoleName string) engine.CredentialResolverFunc {
	return func(ctx context.Context, target engine.EnvironmentTarget) (*engine.Credentials, error) {
		return r.Resolve(ctx, CredentialRequest{
			AccountID:      target.AccountID,
			Region:         target.Region,
			Partition:      partition,
			AssumeRoleName: assumeRoleName,
		})
	}
}

// effectiveRole validates the role inputs and returns the role ARN to
// assume together with the account it belongs to.
func (r *CredentialResolver) effectiveRole(req CredentialRequest) (arn string, account string, err error) {
	switch {
	case req.AssumeRoleName != "" && req.AssumeRoleArn != "":
		return "", "", engine.NewInvalidInputError(
			"both assumeRoleName and assumeRoleArn were supplied, provide exactly one")
	case req.AssumeRoleName == "" && req.AssumeRoleArn == "":
		return "", "", engine.NewInvalidInputError(
			"neither assumeRoleName nor assumeRoleArn was supplied, provide exactly one")
	case req.AssumeRoleName != "":
		if req.Partition == "" {
			return "", "", engine.NewInvalidInputError(
				"partition is required when assumeRoleName is supplied")
		}
		arn = fmt.Sprintf("arn:%s:iam::%s:role/%s",
			req.Partition, req.AccountID, req.AssumeRoleName)
		return arn, req.AccountID, nil
	default:
		account, err = accountFromRoleArn(req.AssumeRoleArn)
		if err != nil {
			return "", "", err
		}
		return req.AssumeRoleArn, account, nil
	}
}

// accountFromRoleArn extracts the account id from an IAM role ARN
// (arn:partition:iam::account:role/name).
func accountFromRoleArn(arn string) (string, error) {
	parts := strings.Split(arn, ":")
	if len(parts) < 6 || parts[4] == "" {
		return "", engine.NewInvalidInputError(
			fmt.Sprintf("assumeRoleArn %q is not a valid role ARN", arn))
	}
	return parts[4], nil
}

// validateCredentials checks that the provider returned all four
// credential fields, naming each missing one.
func validateCredentials(out *sts.AssumeRoleOutput, roleArn string) (*engine.Credentials, error) {
	missing := func(field string) error {
		return engine.NewServiceError(
			fmt.Sprintf("assume role response is missing %s", field), nil).
			WithResource(roleArn)
	}

	if out.Credentials == nil {
		return nil, missing("credentials")
	}
	c := out.Credentials
	if c.AccessKeyId == nil {
		return nil, missing("accessKeyId")
	}
	if c.SecretAccessKey == nil {
		return nil, missing("secretAccessKey")
	}
	if c.SessionToken == nil {
		return nil, missing("sessionToken")
	}
	if c.Expiration == nil {
		return nil, missing("expiration")
	}

	return &engine.Credentials{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: aws.ToString(c.SecretAccessKey),
		SessionToken:    aws.ToString(c.SessionToken),
		Expiration:      *c.Expiration,
	}, nil
}
