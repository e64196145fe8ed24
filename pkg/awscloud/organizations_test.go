package awscloud

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

// mockOrganizations overrides only the calls a test exercises.
type mockOrganizations struct {
	OrganizationsAPI

	featureSet orgtypes.OrganizationFeatureSet
	roots      []orgtypes.Root

	// accountPages simulates paginated ListAccounts responses.
	accountPages [][]orgtypes.Account
	pageIndex    int

	ous       []orgtypes.OrganizationalUnit
	createdOU *string

	parents   []orgtypes.Parent
	moveCalls int
	lastMove  *organizations.MoveAccountInput
}

func (m *mockOrganizations) DescribeOrganization(ctx context.Context, params *organizations.DescribeOrganizationInput, optFns ...func(*organizations.Options)) (*organizations.DescribeOrganizationOutput, error) {
	return &organizations.DescribeOrganizationOutput{
		Organization: &orgtypes.Organization{FeatureSet: m.featureSet},
	}, nil
}

func (m *mockOrganizations) ListRoots(ctx context.Context, params *organizations.ListRootsInput, optFns ...func(*organizations.Options)) (*organizations.ListRootsOutput, error) {
	return &organizations.ListRootsOutput{Roots: m.roots}, nil
}

func (m *mockOrganizations) ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error) {
	page := m.accountPages[m.pageIndex]
	out := &organizations.ListAccountsOutput{Accounts: page}
	if m.pageIndex < len(m.accountPages)-1 {
		out.NextToken = aws.String("next")
		m.pageIndex++
	}
	return out, nil
}

func (m *mockOrganizations) ListOrganizationalUnitsForParent(ctx context.Context, params *organizations.ListOrganizationalUnitsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error) {
	return &organizations.ListOrganizationalUnitsForParentOutput{OrganizationalUnits: m.ous}, nil
}

func (m *mockOrganizations) CreateOrganizationalUnit(ctx context.Context, params *organizations.CreateOrganizationalUnitInput, optFns ...func(*organizations.Options)) (*organizations.CreateOrganizationalUnitOutput, error) {
	m.createdOU = params.Name
	return &organizations.CreateOrganizationalUnitOutput{
		OrganizationalUnit: &orgtypes.OrganizationalUnit{
			Id:   aws.String("ou-new"),
			Name: params.Name,
		},
	}, nil
}

func (m *mockOrganizations) CreateAccount(ctx context.Context, params *organizations.CreateAccountInput, optFns ...func(*organizations.Options)) (*organizations.CreateAccountOutput, error) {
	return &organizations.CreateAccountOutput{
		CreateAccountStatus: &orgtypes.CreateAccountStatus{
			Id:    aws.String("car-1"),
			State: orgtypes.CreateAccountStateInProgress,
		},
	}, nil
}

func (m *mockOrganizations) DescribeCreateAccountStatus(ctx context.Context, params *organizations.DescribeCreateAccountStatusInput, optFns ...func(*organizations.Options)) (*organizations.DescribeCreateAccountStatusOutput, error) {
	return &organizations.DescribeCreateAccountStatusOutput{
		CreateAccountStatus: &orgtypes.CreateAccountStatus{
			Id:        aws.String("car-1"),
			State:     orgtypes.CreateAccountStateSucceeded,
			AccountId: aws.String("444444444444"),
		},
	}, nil
}

func (m *mockOrganizations) ListParents(ctx context.Context, params *organizations.ListParentsInput, optFns ...func(*organizations.Options)) (*organizations.ListParentsOutput, error) {
	return &organizations.ListParentsOutput{Parents: m.parents}, nil
}

func (m *mockOrganizations) MoveAccount(ctx context.Context, params *organizations.MoveAccountInput, optFns ...func(*organizations.Options)) (*organizations.MoveAccountOutput, error) {
	m.moveCalls++
	m.lastMove = params
	return &organizations.MoveAccountOutput{}, nil
}

func singleRoot() []orgtypes.Root {
	return []orgtypes.Root{{Id: aws.String("r-root")}}
}

func newTestOrgClient(t *testing.T, mock *mockOrganizations) *OrganizationsClient {
	t.Helper()
	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{Level: "error", Format: "json"})
	require.NoError(t, err)
	return NewOrganizationsClient(mock, engine.NewRetrier(1), logger)
}

func TestOrganizationsClient_ValidateOrganization(t *testing.T) {
	client := newTestOrgClient(t, &mockOrganizations{
		featureSet: orgtypes.OrganizationFeatureSetAll,
		roots:      singleRoot(),
	})

	assert.NoError(t, client.ValidateOrganization(context.Background()))
}

func TestOrganizationsClient_ValidateOrganizationConsolidatedBilling(t *testing.T) {
	client := newTestOrgClient(t, &mockOrganizations{
		featureSet: orgtypes.OrganizationFeatureSetConsolidatedBilling,
		roots:      singleRoot(),
	})

	err := client.ValidateOrganization(context.Background())

	require.Error(t, err)
	assert.True(t, engine.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "all features")
}

func TestOrganizationsClient_ValidateOrganizationMultipleRoots(t *testing.T) {
	client := newTestOrgClient(t, &mockOrganizations{
		featureSet: orgtypes.OrganizationFeatureSetAll,
		roots: []orgtypes.Root{
			{Id: aws.String("r-1")},
			{Id: aws.String("r-2")},
		},
	})

	err := client.ValidateOrganization(context.Background())

	require.Error(t, err)
	assert.True(t, engine.IsServiceException(err))
}

func TestOrganizationsClient_FindAccountByEmailAcrossPages(t *testing.T) {
	client := newTestOrgClient(t, &mockOrganizations{
		accountPages: [][]orgtypes.Account{
			{{Id: aws.String("111111111111"), Email: aws.String("mgmt@example.com")}},
			{{Id: aws.String("333333333333"), Email: aws.String("Audit@Example.COM")}},
		},
	})

	// Case-insensitive match on the second page.
	id, err := client.FindAccountByEmail(context.Background(), "audit@example.com")

	require.NoError(t, err)
	assert.Equal(t, "333333333333", id)
}

func TestOrganizationsClient_FindAccountByEmailMissing(t *testing.T) {
	client := newTestOrgClient(t, &mockOrganizations{
		accountPages: [][]orgtypes.Account{
			{{Id: aws.String("111111111111"), Email: aws.String("mgmt@example.com")}},
		},
	})

	id, err := client.FindAccountByEmail(context.Background(), "ghost@example.com")

	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestOrganizationsClient_EnsureOrganizationalUnitExisting(t *testing.T) {
	mock := &mockOrganizations{
		roots: singleRoot(),
		ous: []orgtypes.OrganizationalUnit{
			{Id: aws.String("ou-sec"), Name: aws.String("Security")},
		},
	}
	client := newTestOrgClient(t, mock)

	id, err := client.EnsureOrganizationalUnit(context.Background(), "Security")

	require.NoError(t, err)
	assert.Equal(t, "ou-sec", id)
	assert.Nil(t, mock.createdOU)
}

func TestOrganizationsClient_EnsureOrganizationalUnitCreates(t *testing.T) {
	mock := &mockOrganizations{roots: singleRoot()}
	client := newTestOrgClient(t, mock)

	id, err := client.EnsureOrganizationalUnit(context.Background(), "Security")

	require.NoError(t, err)
	assert.Equal(t, "ou-new", id)
	require.NotNil(t, mock.createdOU)
	assert.Equal(t, "Security", *mock.createdOU)
}

func TestOrganizationsClient_CreateAccount(t *testing.T) {
	client := newTestOrgClient(t, &mockOrganizations{})

	id, err := client.CreateAccount(context.Background(), "Audit", "audit@example.com")

	require.NoError(t, err)
	assert.Equal(t, "444444444444", id)
}

func TestOrganizationsClient_MoveAccount(t *testing.T) {
	mock := &mockOrganizations{
		parents: []orgtypes.Parent{{Id: aws.String("r-root")}},
	}
	client := newTestOrgClient(t, mock)

	require.NoError(t, client.MoveAccount(context.Background(), "333333333333", "ou-sec"))

	assert.Equal(t, 1, mock.moveCalls)
	assert.Equal(t, "r-root", aws.ToString(mock.lastMove.SourceParentId))
	assert.Equal(t, "ou-sec", aws.ToString(mock.lastMove.DestinationParentId))
}

func TestOrganizationsClient_MoveAccountAlreadyThere(t *testing.T) {
	mock := &mockOrganizations{
		parents: []orgtypes.Parent{{Id: aws.String("ou-sec")}},
	}
	client := newTestOrgClient(t, mock)

	require.NoError(t, client.MoveAccount(context.Background(), "333333333333", "ou-sec"))

	assert.Equal(t, 0, mock.moveCalls)
}
