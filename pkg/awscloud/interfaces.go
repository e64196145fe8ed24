// Package awscloud implements the provider boundary of the landing zone
// workflow on aws-sdk-go-v2: the Control Tower control plane, the
// Organizations directory, STS credential resolution, and the IAM/KMS
// prerequisite resources. Every call goes through the engine's backoff
// retrier.
package awscloud

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/controltower"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ControlTowerAPI is the subset of the Control Tower client the landing
// zone and baseline services consume.
type ControlTowerAPI interface {
	ListLandingZones(ctx context.Context, params *controltower.ListLandingZonesInput, optFns ...func(*controltower.Options)) (*controltower.ListLandingZonesOutput, error)
	GetLandingZone(ctx context.Context, params *controltower.GetLandingZoneInput, optFns ...func(*controltower.Options)) (*controltower.GetLandingZoneOutput, error)
	CreateLandingZone(ctx context.Context, params *controltower.CreateLandingZoneInput, optFns ...func(*controltower.Options)) (*controltower.CreateLandingZoneOutput, error)
	UpdateLandingZone(ctx context.Context, params *controltower.UpdateLandingZoneInput, optFns ...func(*controltower.Options)) (*controltower.UpdateLandingZoneOutput, error)
	ResetLandingZone(ctx context.Context, params *controltower.ResetLandingZoneInput, optFns ...func(*controltower.Options)) (*controltower.ResetLandingZoneOutput, error)
	GetLandingZoneOperation(ctx context.Context, params *controltower.GetLandingZoneOperationInput, optFns ...func(*controltower.Options)) (*controltower.GetLandingZoneOperationOutput, error)
	ListBaselines(ctx context.Context, params *controltower.ListBaselinesInput, optFns ...func(*controltower.Options)) (*controltower.ListBaselinesOutput, error)
	ListEnabledBaselines(ctx context.Context, params *controltower.ListEnabledBaselinesInput, optFns ...func(*controltower.Options)) (*controltower.ListEnabledBaselinesOutput, error)
	EnableBaseline(ctx context.Context, params *controltower.EnableBaselineInput, optFns ...func(*controltower.Options)) (*controltower.EnableBaselineOutput, error)
	GetBaselineOperation(ctx context.Context, params *controltower.GetBaselineOperationInput, optFns ...func(*controltower.Options)) (*controltower.GetBaselineOperationOutput, error)
}

// OrganizationsAPI is the subset of the Organizations client the
// directory service consumes.
type OrganizationsAPI interface {
	DescribeOrganization(ctx context.Context, params *organizations.DescribeOrganizationInput, optFns ...func(*organizations.Options)) (*organizations.DescribeOrganizationOutput, error)
	ListRoots(ctx context.Context, params *organizations.ListRootsInput, optFns ...func(*organizations.Options)) (*organizations.ListRootsOutput, error)
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
	ListOrganizationalUnitsForParent(ctx context.Context, params *organizations.ListOrganizationalUnitsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error)
	CreateOrganizationalUnit(ctx context.Context, params *organizations.CreateOrganizationalUnitInput, optFns ...func(*organizations.Options)) (*organizations.CreateOrganizationalUnitOutput, error)
	CreateAccount(ctx context.Context, params *organizations.CreateAccountInput, optFns ...func(*organizations.Options)) (*organizations.CreateAccountOutput, error)
	DescribeCreateAccountStatus(ctx context.Context, params *organizations.DescribeCreateAccountStatusInput, optFns ...func(*organizations.Options)) (*organizations.DescribeCreateAccountStatusOutput, error)
	ListParents(ctx context.Context, params *organizations.ListParentsInput, optFns ...func(*organizations.Options)) (*organizations.ListParentsOutput, error)
	MoveAccount(ctx context.Context, params *organizations.MoveAccountInput, optFns ...func(*organizations.Options)) (*organizations.MoveAccountOutput, error)
}

// STSAPI is the subset of the STS client the credential resolver
// consumes.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// KMSAPI is the subset of the KMS client the key service consumes.
type KMSAPI interface {
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
}

// IAMAPI is the subset of the IAM client the role service consumes.
type IAMAPI interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
	PutRolePolicy(ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error)
}
