package engine

import "encoding/json"

// EventKind selects the provider operation a manifest is built for.
type EventKind string

const (
	// EventCreate builds the manifest for a first-time CREATE.
	EventCreate EventKind = "CREATE"

	// EventUpdate builds the manifest for an UPDATE or RESET of an
	// existing landing zone.
	EventUpdate EventKind = "UPDATE"
)

// Generation identifies a manifest schema generation.
type Generation int

const (
	// GenerationLegacy manifests carry an organizationStructure block and
	// predate the securityRoles/backup blocks.
	GenerationLegacy Generation = iota + 1

	// GenerationCurrent manifests carry securityRoles/backup blocks and
	// no organizationStructure.
	GenerationCurrent
)

// Manifest is the versioned configuration document submitted with
// create/update/reset operations.
type Manifest struct {
	GovernedRegions    []string         `json:"governedRegions"`
	AccessManagement   AccessManagement `json:"accessManagement"`
	CentralizedLogging LoggingBlock     `json:"centralizedLogging"`
	ConfigHub          LoggingBlock     `json:"configHub"`
	SecurityRoles      SecurityRoles    `json:"securityRoles"`

	// Backup is carried forward verbatim from a prior manifest; this
	// system never interprets its contents.
	Backup json.RawMessage `json:"backup,omitempty"`

	// OrganizationStructure only appears in legacy-generation manifests
	// read back from the provider. The builder never emits it.
	OrganizationStructure json.RawMessage `json:"organizationStructure,omitempty"`
}

// AccessManagement is the identity-console access flag.
type AccessManagement struct {
	Enabled bool `json:"enabled"`
}

// SecurityRoles names the account hosting the delegated security roles.
type SecurityRoles struct {
	AccountID string `json:"accountId,omitempty"`

	// Enabled defaults to true when absent from a prior manifest.
	Enabled *bool `json:"enabled,omitempty"`
}

// LoggingBlock is one logging destination (centralized logging or the
// config hub) with its retention and encryption settings.
type LoggingBlock struct {
	AccountID      string                `json:"accountId"`
	Enabled        bool                  `json:"enabled"`
	Configurations LoggingConfigurations `json:"configurations"`
}

// LoggingConfigurations holds the two bucket classes and the key.
type LoggingConfigurations struct {
	LoggingBucket       BucketRetention `json:"loggingBucket"`
	AccessLoggingBucket BucketRetention `json:"accessLoggingBucket"`
	KMSKeyArn           string          `json:"kmsKeyArn,omitempty"`
}

// BucketRetention is the retention of one bucket class.
type BucketRetention struct {
	RetentionDays int `json:"retentionDays"`
}

// Generation reports which schema generation a manifest belongs to.
func (m *Manifest) Generation() Generation {
	if len(m.OrganizationStructure) > 0 {
		return GenerationLegacy
	}
	return GenerationCurrent
}

// migrateLegacyToCurrent lifts a legacy manifest into the current
// generation: the organizationStructure block is dropped and the
// securityRoles enabled flag gains its default.
func migrateLegacyToCurrent(m Manifest) Manifest {
	m.OrganizationStructure = nil
	if m.SecurityRoles.Enabled == nil {
		m.SecurityRoles.Enabled = boolPtr(true)
	}
	return m
}

// migrations maps each non-current generation to the pure function that
// lifts it one generation forward.
var migrations = map[Generation]func(Manifest) Manifest{
	GenerationLegacy: migrateLegacyToCurrent,
}

// Normalize applies generation migrations in sequence until the manifest
// is current. The input is not mutated.
func Normalize(m Manifest) Manifest {
	for {
		migrate, ok := migrations[m.Generation()]
		if !ok {
			return m
		}
		m = migrate(m)
	}
}

// KeyArns are the resolved encryption key identifiers for the two
// logging blocks. ConfigHub may be empty on legacy schema versions.
type KeyArns struct {
	CentralizedLogging string
	ConfigHub          string
}

// ResolvedAccounts are the shared-account identifiers resolved from the
// organization's account list.
type ResolvedAccounts struct {
	ManagementID string
	LoggingID    string
	AuditID      string
}

// BuildManifest produces the next manifest from the desired
// configuration, the resolved key ARNs, the resolved shared accounts,
// and the prior manifest when one exists. It is deterministic and
// side-effect-free: identical inputs yield a structurally identical
// manifest. The output never contains organizationStructure; backup and
// securityRoles.enabled carry forward from the prior manifest on UPDATE
// events only, a CREATE always starts from the defaults.
func BuildManifest(
	desired *DesiredConfiguration,
	kind EventKind,
	keys KeyArns,
	accounts ResolvedAccounts,
	prior *Manifest,
) *Manifest {
	m := &Manifest{
		GovernedRegions: append([]string(nil), desired.GovernedRegions...),
		AccessManagement: AccessManagement{
			Enabled: desired.IdentityCenterAccess,
		},
		CentralizedLogging: LoggingBlock{
			AccountID: accounts.LoggingID,
			Enabled:   desired.Logging.OrganizationTrail,
			Configurations: LoggingConfigurations{
				LoggingBucket: BucketRetention{
					RetentionDays: desired.Logging.BucketRetentionDays,
				},
				AccessLoggingBucket: BucketRetention{
					RetentionDays: desired.Logging.AccessBucketRetentionDays,
				},
				KMSKeyArn: keys.CentralizedLogging,
			},
		},
		ConfigHub: LoggingBlock{
			AccountID: accounts.ManagementID,
			Enabled:   true,
			Configurations: LoggingConfigurations{
				LoggingBucket: BucketRetention{
					RetentionDays: desired.ConfigHub.BucketRetentionDays,
				},
				AccessLoggingBucket: BucketRetention{
					RetentionDays: desired.ConfigHub.AccessBucketRetentionDays,
				},
				KMSKeyArn: keys.ConfigHub,
			},
		},
		SecurityRoles: SecurityRoles{
			AccountID: accounts.AuditID,
			Enabled:   boolPtr(true),
		},
	}

	if kind == EventUpdate && prior != nil {
		normalized := Normalize(*prior)
		m.Backup = normalized.Backup
		if normalized.SecurityRoles.Enabled != nil {
			m.SecurityRoles.Enabled = normalized.SecurityRoles.Enabled
		}
	}

	return m
}

func boolPtr(b bool) *bool {
	return &b
}
