package engine

import "time"

// DesiredConfiguration is the declared target state of the landing zone.
// It is produced by a total validation pass over the configuration file
// and is immutable for the duration of one invocation.
type DesiredConfiguration struct {
	// Version is the landing zone schema version to deploy.
	Version string `yaml:"version" validate:"required"`

	// GovernedRegions are the regions the landing zone must manage.
	GovernedRegions []string `yaml:"governedRegions" validate:"required,min=1,dive,required"`

	// IdentityCenterAccess enables identity-console access management.
	IdentityCenterAccess bool `yaml:"identityCenterAccess"`

	// SecurityOUName is the organizational unit that holds the shared
	// security accounts.
	SecurityOUName string `yaml:"securityOuName" validate:"required"`

	// Logging is the centralized-logging configuration.
	Logging LoggingSettings `yaml:"logging" validate:"required"`

	// ConfigHub is the config-hub logging configuration.
	ConfigHub ConfigHubSettings `yaml:"configHub" validate:"required"`

	// Accounts are the three shared-account descriptors.
	Accounts SharedAccounts `yaml:"sharedAccounts" validate:"required"`
}

// LoggingSettings declares the centralized-logging trail and retention.
type LoggingSettings struct {
	// OrganizationTrail enables the organization-wide logging trail. The
	// manifest's centralized-logging enabled flag mirrors this setting.
	OrganizationTrail bool `yaml:"organizationTrail"`

	// BucketRetentionDays is the retention of the central logging bucket.
	BucketRetentionDays int `yaml:"bucketRetentionDays" validate:"required,gt=0"`

	// AccessBucketRetentionDays is the retention of the access-log bucket.
	AccessBucketRetentionDays int `yaml:"accessBucketRetentionDays" validate:"required,gt=0"`
}

// ConfigHubSettings declares the config-hub bucket retention. The
// config-hub block is always enabled in the manifest.
type ConfigHubSettings struct {
	BucketRetentionDays       int `yaml:"bucketRetentionDays" validate:"required,gt=0"`
	AccessBucketRetentionDays int `yaml:"accessBucketRetentionDays" validate:"required,gt=0"`
}

// SharedAccounts names the three accounts the landing zone requires.
type SharedAccounts struct {
	Management AccountDescriptor `yaml:"management" validate:"required"`
	Logging    AccountDescriptor `yaml:"logging" validate:"required"`
	Audit      AccountDescriptor `yaml:"audit" validate:"required"`
}

// AccountDescriptor identifies one shared account by name and email.
// The email is the lookup key against the organization's account list.
type AccountDescriptor struct {
	Name  string `yaml:"name" validate:"required"`
	Email string `yaml:"email" validate:"required,email"`
}

// LandingZoneStatus is the provider-reported lifecycle status of a
// landing zone.
type LandingZoneStatus string

const (
	// StatusActive indicates the landing zone is available and idle.
	StatusActive LandingZoneStatus = "ACTIVE"

	// StatusProcessing indicates an operation is already in flight.
	StatusProcessing LandingZoneStatus = "PROCESSING"

	// StatusFailed indicates the last operation left the landing zone in
	// a failed state.
	StatusFailed LandingZoneStatus = "FAILED"
)

// DriftStatus is the provider-reported consistency of a landing zone's
// declared versus actual configuration.
type DriftStatus string

const (
	// DriftInSync indicates no drift was detected.
	DriftInSync DriftStatus = "IN_SYNC"

	// DriftDrifted indicates declared and actual configuration diverged.
	DriftDrifted DriftStatus = "DRIFTED"
)

// ObservedState is the current provider-reported landing zone. It is read
// fresh on every invocation and never cached across invocations.
type ObservedState struct {
	// Identifier is the landing zone ARN. Empty means no landing zone
	// exists yet.
	Identifier string

	// Status is the lifecycle status.
	Status LandingZoneStatus

	// Version is the deployed landing zone schema version.
	Version string

	// LatestAvailableVersion is the newest version the provider offers.
	LatestAvailableVersion string

	// DriftStatus reports declared-versus-actual consistency.
	DriftStatus DriftStatus

	// GovernedRegions are the regions the landing zone actively manages.
	// May be nil when the provider omits the list.
	GovernedRegions []string

	// IdentityCenterAccess reports whether identity-console access
	// management is enabled.
	IdentityCenterAccess bool

	// CentralizedLogging is the observed centralized-logging block.
	CentralizedLogging ObservedLogging

	// ConfigHub is the observed config-hub block.
	ConfigHub ObservedLogging

	// SecurityOUName is the organizational unit holding the shared
	// security accounts.
	SecurityOUName string
}

// ObservedLogging is the observed retention and key configuration of one
// logging block.
type ObservedLogging struct {
	AccountID                 string
	BucketRetentionDays       int
	AccessBucketRetentionDays int
	KMSKeyArn                 string
}

// Exists reports whether a landing zone was found at all.
func (s *ObservedState) Exists() bool {
	return s != nil && s.Identifier != ""
}

// Credentials is an ephemeral assumed-role credential set. It is never
// persisted; a nil *Credentials means "use the caller's ambient identity".
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}
