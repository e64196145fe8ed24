package awscloud

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

type mockSTS struct {
	callerAccount string

	assumeCalls int
	lastRoleArn string
	lastSession string
	assumeErr   error
	credentials *ststypes.Credentials
}

func (m *mockSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String(m.callerAccount)}, nil
}

func (m *mockSTS) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	m.assumeCalls++
	m.lastRoleArn = aws.ToString(params.RoleArn)
	m.lastSession = aws.ToString(params.RoleSessionName)
	if m.assumeErr != nil {
		return nil, m.assumeErr
	}
	return &sts.AssumeRoleOutput{Credentials: m.credentials}, nil
}

func fullCredentials() *ststypes.Credentials {
	expiration := time.Now().Add(time.Hour)
	return &ststypes.Credentials{
		AccessKeyId:     aws.String("AKIAEXAMPLE"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("token"),
		Expiration:      &expiration,
	}
}

func newTestResolver(t *testing.T, client *mockSTS) *CredentialResolver {
	t.Helper()
	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{Level: "error", Format: "json"})
	require.NoError(t, err)
	return NewCredentialResolver(client, engine.NewRetrier(1), logger)
}

func TestCredentialResolver_AssumesRoleByName(t *testing.T) {
	client := &mockSTS{callerAccount: "111111111111", credentials: fullCredentials()}
	resolver := newTestResolver(t, client)

	creds, err := resolver.Resolve(context.Background(), CredentialRequest{
		AccountID:      "222222222222",
		Region:         "us-east-1",
		Partition:      "aws",
		AssumeRoleName: "OrganizationAccountAccessRole",
	})

	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "arn:aws:iam::222222222222:role/OrganizationAccountAccessRole", client.lastRoleArn)
	assert.Contains(t, client.lastSession, "towerctl-")
}

func TestCredentialResolver_SolutionTagNamesSession(t *testing.T) {
	client := &mockSTS{callerAccount: "111111111111", credentials: fullCredentials()}
	resolver := newTestResolver(t, client)

	_, err := resolver.Resolve(context.Background(), CredentialRequest{
		AccountID:      "222222222222",
		Partition:      "aws",
		AssumeRoleName: "OrganizationAccountAccessRole",
		SolutionTag:    "SO0089",
	})

	require.NoError(t, err)
	assert.Contains(t, client.lastSession, "SO0089-")
}

func TestCredentialResolver_AssumesRoleByArn(t *testing.T) {
	client := &mockSTS{callerAccount: "111111111111", credentials: fullCredentials()}
	resolver := newTestResolver(t, client)

	creds, err := resolver.Resolve(context.Background(), CredentialRequest{
		AssumeRoleArn: "arn:aws:iam::222222222222:role/Deployer",
		SessionName:   "pinned-session",
	})

	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "arn:aws:iam::222222222222:role/Deployer", client.lastRoleArn)
	assert.Equal(t, "pinned-session", client.lastSession)
}

func TestCredentialResolver_SameAccountShortCircuits(t *testing.T) {
	client := &mockSTS{callerAccount: "222222222222", credentials: fullCredentials()}
	resolver := newTestResolver(t, client)

	creds, err := resolver.Resolve(context.Background(), CredentialRequest{
		AccountID:      "222222222222",
		Partition:      "aws",
		AssumeRoleName: "OrganizationAccountAccessRole",
	})

	// Nil credentials signal "keep the ambient identity".
	require.NoError(t, err)
	assert.Nil(t, creds)
	assert.Equal(t, 0, client.assumeCalls)
}

func TestCredentialResolver_RoleInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     CredentialRequest
		wantMsg string
	}{
		{
			name: "both role inputs",
			req: CredentialRequest{
				AssumeRoleName: "Role",
				AssumeRoleArn:  "arn:aws:iam::222222222222:role/Role",
			},
			wantMsg: "both assumeRoleName and assumeRoleArn were supplied",
		},
		{
			name:    "neither role input",
			req:     CredentialRequest{AccountID: "222222222222"},
			wantMsg: "neither assumeRoleName nor assumeRoleArn was supplied",
		},
		{
			name: "role name without partition",
			req: CredentialRequest{
				AccountID:      "222222222222",
				AssumeRoleName: "Role",
			},
			wantMsg: "partition is required",
		},
		{
			name:    "malformed role arn",
			req:     CredentialRequest{AssumeRoleArn: "not-an-arn"},
			wantMsg: "not a valid role ARN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSTS{callerAccount: "111111111111", credentials: fullCredentials()}
			resolver := newTestResolver(t, client)

			_, err := resolver.Resolve(context.Background(), tt.req)

			require.Error(t, err)
			assert.True(t, engine.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, 0, client.assumeCalls)
		})
	}
}

func TestCredentialResolver_ResolverFor(t *testing.T) {
	client := &mockSTS{callerAccount: "111111111111", credentials: fullCredentials()}
	resolver := newTestResolver(t, client)

	resolve := resolver.ResolverFor("aws", "OrganizationAccountAccessRole")

	results := engine.ResolveEnvironmentCredentials(context.Background(),
		[]engine.EnvironmentTarget{
			{AccountID: "222222222222", Region: "us-east-1"},
			{AccountID: "111111111111", Region: "eu-west-1"},
		}, 2, resolve)

	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Credentials)
	// The caller's own account resolves to nil credentials.
	require.NoError(t, results[1].Err)
	assert.Nil(t, results[1].Credentials)
}

func TestCredentialResolver_MissingCredentialFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ststypes.Credentials) *ststypes.Credentials
		want   string
	}{
		{"nil credentials", func(c *ststypes.Credentials) *ststypes.Credentials { return nil }, "credentials"},
		{"access key", func(c *ststypes.Credentials) *ststypes.Credentials { c.AccessKeyId = nil; return c }, "accessKeyId"},
		{"secret key", func(c *ststypes.Credentials) *ststypes.Credentials { c.SecretAccessKey = nil; return c }, "secretAccessKey"},
		{"session token", func(c *ststypes.Credentials) *ststypes.Credentials { c.SessionToken = nil; return c }, "sessionToken"},
		{"expiration", func(c *ststypes.Credentials) *ststypes.Credentials { c.Expiration = nil; return c }, "expiration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSTS{
				callerAccount: "111111111111",
				credentials:   tt.mutate(fullCredentials()),
			}
			resolver := newTestResolver(t, client)

			_, err := resolver.Resolve(context.Background(), CredentialRequest{
				AccountID:      "222222222222",
				Partition:      "aws",
				AssumeRoleName: "Role",
			})

			require.Error(t, err)
			assert.True(t, engine.IsServiceException(err))
			assert.Contains(t, err.Error(), "assume role response is missing "+tt.want)
		})
	}
}
