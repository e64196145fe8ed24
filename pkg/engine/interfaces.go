package engine

import "context"

// LandingZoneService is the landing-zone control plane boundary consumed
// by the orchestrators. The AWS implementation lives in pkg/awscloud.
type LandingZoneService interface {
	// Find returns the current landing zone, with an empty Identifier
	// when none exists. More than one landing zone is a contract
	// violation surfaced as a SERVICE_EXCEPTION.
	Find(ctx context.Context) (*ObservedState, error)

	// PriorManifest fetches the manifest currently deployed for the
	// identified landing zone.
	PriorManifest(ctx context.Context, identifier string) (*Manifest, error)

	// Create submits a CREATE and returns its operation identifier.
	Create(ctx context.Context, manifest *Manifest, version string) (string, error)

	// Update submits an UPDATE and returns its operation identifier.
	Update(ctx context.Context, identifier string, manifest *Manifest, version string) (string, error)

	// Reset submits a RESET and returns its operation identifier.
	Reset(ctx context.Context, identifier string) (string, error)

	// OperationStatus polls one submitted operation.
	OperationStatus(ctx context.Context, operationID string) (OperationStatus, error)
}

// OrganizationService is the organization directory boundary.
type OrganizationService interface {
	// ValidateOrganization verifies the organization is usable for a
	// landing zone (exists, all-features, exactly one root).
	ValidateOrganization(ctx context.Context) error

	// FindAccountByEmail resolves an account id by case-insensitive email
	// match against the organization's account list. Returns "" when no
	// account matches.
	FindAccountByEmail(ctx context.Context, email string) (string, error)

	// EnsureOrganizationalUnit returns the id of the named OU directly
	// under the root, creating it when absent.
	EnsureOrganizationalUnit(ctx context.Context, name string) (string, error)

	// CreateAccount creates a member account and waits for the async
	// creation to finish, returning the new account id.
	CreateAccount(ctx context.Context, name, email string) (string, error)

	// MoveAccount moves an account from its current parent to the given
	// organizational unit.
	MoveAccount(ctx context.Context, accountID, ouID string) error
}

// RoleService creates the delegated IAM roles the landing zone service
// requires.
type RoleService interface {
	EnsureServiceRoles(ctx context.Context) error
}

// KeyService provisions customer-managed encryption keys.
type KeyService interface {
	// EnsureKey returns the ARN of the aliased key, creating it when
	// absent.
	EnsureKey(ctx context.Context, alias string) (string, error)
}

// CredentialResolverFunc resolves the credentials needed to act in one
// target environment. A nil credential set means the caller's ambient
// identity already suffices.
type CredentialResolverFunc func(ctx context.Context, target EnvironmentTarget) (*Credentials, error)
