package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerctl/towerctl/pkg/engine"
)

const validConfigYAML = `version: "3.3"
governedRegions:
  - us-east-1
  - eu-west-1
identityCenterAccess: true
securityOuName: Security
logging:
  organizationTrail: true
  bucketRetentionDays: 365
  accessBucketRetentionDays: 3650
configHub:
  bucketRetentionDays: 180
  accessBucketRetentionDays: 900
sharedAccounts:
  management:
    name: Management
    email: mgmt@example.com
  logging:
    name: Log Archive
    email: logs@example.com
  audit:
    name: Audit
    email: audit@example.com
`

func TestLoader_ValidConfig(t *testing.T) {
	cfg, err := NewLoader().Load([]byte(validConfigYAML))

	require.NoError(t, err)
	assert.Equal(t, "3.3", cfg.Version)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.GovernedRegions)
	assert.True(t, cfg.IdentityCenterAccess)
	assert.Equal(t, "Security", cfg.SecurityOUName)
	assert.Equal(t, 365, cfg.Logging.BucketRetentionDays)
	assert.Equal(t, 900, cfg.ConfigHub.AccessBucketRetentionDays)
	assert.Equal(t, "audit@example.com", cfg.Accounts.Audit.Email)
}

func TestLoader_RejectsUnknownFields(t *testing.T) {
	data := validConfigYAML + "governedRegion: typo\n"

	_, err := NewLoader().Load([]byte(data))

	require.Error(t, err)
	assert.True(t, engine.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "not valid YAML")
}

func TestLoader_RejectsMalformedYAML(t *testing.T) {
	_, err := NewLoader().Load([]byte("version: [unclosed"))

	require.Error(t, err)
	assert.True(t, engine.IsInvalidInput(err))
}

func TestLoader_ValidationErrorsNameFields(t *testing.T) {
	data := `version: "3.3"
governedRegions:
  - us-east-1
securityOuName: Security
logging:
  bucketRetentionDays: 365
  accessBucketRetentionDays: 3650
configHub:
  bucketRetentionDays: 180
  accessBucketRetentionDays: 900
sharedAccounts:
  management:
    name: Management
    email: not-an-email
  logging:
    name: Log Archive
    email: logs@example.com
  audit:
    name: Audit
    email: audit@example.com
`

	_, err := NewLoader().Load([]byte(data))

	require.Error(t, err)
	assert.True(t, engine.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "configuration failed validation")
	assert.Contains(t, err.Error(), "Management.Email")
	assert.Contains(t, err.Error(), "(email)")
}

func TestLoader_RequiresGovernedRegions(t *testing.T) {
	data := `version: "3.3"
governedRegions: []
securityOuName: Security
logging:
  bucketRetentionDays: 365
  accessBucketRetentionDays: 3650
configHub:
  bucketRetentionDays: 180
  accessBucketRetentionDays: 900
sharedAccounts:
  management:
    name: Management
    email: mgmt@example.com
  logging:
    name: Log Archive
    email: logs@example.com
  audit:
    name: Audit
    email: audit@example.com
`

	_, err := NewLoader().Load([]byte(data))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GovernedRegions")
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landing-zone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfigYAML), 0644))

	cfg, err := NewLoader().LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "3.3", cfg.Version)
}

func TestLoader_LoadFileMissing(t *testing.T) {
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read configuration file")
}
