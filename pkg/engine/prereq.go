package engine

import (
	"context"
	"fmt"

	"github.com/towerctl/towerctl/pkg/telemetry"
)

// Key aliases for the two customer-managed keys the landing zone needs.
const (
	CentralizedLoggingKeyAlias = "landing-zone-centralized-logging"
	ConfigHubKeyAlias          = "landing-zone-config-hub"
)

// PrerequisiteOrchestrator performs the ordered first-time setup that
// must complete before a landing zone CREATE can be submitted. Every
// step is fatal on failure.
type PrerequisiteOrchestrator struct {
	orgs   OrganizationService
	roles  RoleService
	keys   KeyService
	logger *telemetry.Logger
}

// NewPrerequisiteOrchestrator wires the prerequisite steps.
func NewPrerequisiteOrchestrator(
	orgs OrganizationService,
	roles RoleService,
	keys KeyService,
	logger *telemetry.Logger,
) *PrerequisiteOrchestrator {
	return &PrerequisiteOrchestrator{
		orgs:   orgs,
		roles:  roles,
		keys:   keys,
		logger: logger.NewComponentLogger("prereq"),
	}
}

// Run executes the prerequisite steps in order: organization validation,
// shared-account resolution, service roles, shared-account creation, and
// encryption keys. useExistingRole skips the service-role step for
// organizations that pre-provision the delegated roles. It returns the
// resolved shared accounts and key ARNs the manifest builder consumes.
func (p *PrerequisiteOrchestrator) Run(ctx context.Context, desired *DesiredConfiguration, useExistingRole bool) (ResolvedAccounts, KeyArns, error) {
	var accounts ResolvedAccounts
	var keys KeyArns

	p.logger.Info("Validating organization structure")
	if err := p.orgs.ValidateOrganization(ctx); err != nil {
		return accounts, keys, err
	}

	p.logger.Info("Resolving shared accounts")
	var err error
	accounts, err = p.ResolveAccounts(ctx, desired)
	if err != nil {
		return accounts, keys, err
	}

	if useExistingRole {
		p.logger.Info("Reusing pre-provisioned landing zone service roles")
	} else {
		p.logger.Info("Creating landing zone service roles")
		if err := p.roles.EnsureServiceRoles(ctx); err != nil {
			return accounts, keys, err
		}
	}

	p.logger.Info("Creating missing shared accounts")
	if err := p.ensureSharedAccounts(ctx, desired, &accounts); err != nil {
		return accounts, keys, err
	}

	p.logger.Info("Creating encryption keys")
	keys.CentralizedLogging, err = p.keys.EnsureKey(ctx, CentralizedLoggingKeyAlias)
	if err != nil {
		return accounts, keys, err
	}
	keys.ConfigHub, err = p.keys.EnsureKey(ctx, ConfigHubKeyAlias)
	if err != nil {
		return accounts, keys, err
	}

	return accounts, keys, nil
}

// ResolveAccounts looks up the three shared-account identifiers by email.
// Accounts that do not exist yet resolve to an empty id; Run creates
// them, while the update path requires all three to resolve.
func (p *PrerequisiteOrchestrator) ResolveAccounts(ctx context.Context, desired *DesiredConfiguration) (ResolvedAccounts, error) {
	var accounts ResolvedAccounts
	var err error

	accounts.ManagementID, err = p.orgs.FindAccountByEmail(ctx, desired.Accounts.Management.Email)
	if err != nil {
		return accounts, err
	}
	accounts.LoggingID, err = p.orgs.FindAccountByEmail(ctx, desired.Accounts.Logging.Email)
	if err != nil {
		return accounts, err
	}
	accounts.AuditID, err = p.orgs.FindAccountByEmail(ctx, desired.Accounts.Audit.Email)
	if err != nil {
		return accounts, err
	}
	return accounts, nil
}

// ensureSharedAccounts creates whichever of the three shared accounts is
// still missing and moves the logging and audit accounts under the
// security OU.
func (p *PrerequisiteOrchestrator) ensureSharedAccounts(ctx context.Context, desired *DesiredConfiguration, accounts *ResolvedAccounts) error {
	if accounts.ManagementID == "" {
		return NewInvalidInputError(fmt.Sprintf(
			"management account %s was not found in the organization",
			desired.Accounts.Management.Email))
	}

	ouID, err := p.orgs.EnsureOrganizationalUnit(ctx, desired.SecurityOUName)
	if err != nil {
		return err
	}

	type member struct {
		desc *AccountDescriptor
		id   *string
	}
	for _, m := range []member{
		{&desired.Accounts.Logging, &accounts.LoggingID},
		{&desired.Accounts.Audit, &accounts.AuditID},
	} {
		if *m.id == "" {
			p.logger.WithField("account", m.desc.Name).Info("Creating shared account")
			id, err := p.orgs.CreateAccount(ctx, m.desc.Name, m.desc.Email)
			if err != nil {
				return err
			}
			*m.id = id
		}
		if err := p.orgs.MoveAccount(ctx, *m.id, ouID); err != nil {
			return err
		}
	}

	return nil
}
