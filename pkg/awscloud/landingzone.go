package awscloud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/controltower/document"
	"github.com/aws/aws-sdk-go-v2/service/controltower"

	"github.com/towerctl/towerctl/pkg/engine"
	"github.com/towerctl/towerctl/pkg/telemetry"
)

// LandingZoneClient implements engine.LandingZoneService on the Control
// Tower control plane.
type LandingZoneClient struct {
	client  ControlTowerAPI
	retrier *engine.Retrier
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// NewLandingZoneClient creates a landing zone client.
func NewLandingZoneClient(client ControlTowerAPI, retrier *engine.Retrier, logger *telemetry.Logger, metrics *telemetry.Metrics) *LandingZoneClient {
	return &LandingZoneClient{
		client:  client,
		retrier: retrier,
		logger:  logger.NewComponentLogger("landingzone"),
		metrics: metrics,
	}
}

// call runs one provider call through the retrier and records its
// outcome and duration.
func (c *LandingZoneClient) call(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	err := c.retrier.Do(ctx, fn)
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordAPICall("controltower", operation, status, time.Since(start))
	return err
}

// Find lists landing zones and reads the details of the single expected
// one. Zero landing zones yields an ObservedState with an empty
// Identifier; more than one is a contract violation.
func (c *LandingZoneClient) Find(ctx context.Context) (*engine.ObservedState, error) {
	var list *controltower.ListLandingZonesOutput
	err := c.call(ctx, "ListLandingZones", func() error {
		var callErr error
		list, callErr = c.client.ListLandingZones(ctx, &controltower.ListLandingZonesInput{})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	switch len(list.LandingZones) {
	case 0:
		return &engine.ObservedState{}, nil
	case 1:
		// The summary only carries the ARN; details come from a read.
	default:
		return nil, engine.NewServiceError(fmt.Sprintf(
			"expected at most one landing zone, the provider returned %d",
			len(list.LandingZones)), nil)
	}

	identifier := aws.ToString(list.LandingZones[0].Arn)
	if identifier == "" {
		return nil, engine.NewServiceError("landing zone summary is missing its identifier", nil)
	}
	return c.describe(ctx, identifier)
}

// describe reads the landing zone details and decodes the deployed
// manifest into the observed state.
func (c *LandingZoneClient) describe(ctx context.Context, identifier string) (*engine.ObservedState, error) {
	var out *controltower.GetLandingZoneOutput
	err := c.call(ctx, "GetLandingZone", func() error {
		var callErr error
		out, callErr = c.client.GetLandingZone(ctx, &controltower.GetLandingZoneInput{
			LandingZoneIdentifier: aws.String(identifier),
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if out.LandingZone == nil {
		return nil, engine.NewServiceError("landing zone details missing from provider response", nil).
			WithResource(identifier)
	}

	detail := out.LandingZone
	state := &engine.ObservedState{
		Identifier:             identifier,
		Status:                 engine.LandingZoneStatus(detail.Status),
		Version:                aws.ToString(detail.Version),
		LatestAvailableVersion: aws.ToString(detail.LatestAvailableVersion),
	}
	if detail.DriftStatus != nil {
		state.DriftStatus = engine.DriftStatus(detail.DriftStatus.Status)
	}

	manifest, err := decodeManifest(detail.Manifest)
	if err != nil {
		return nil, engine.NewServiceError("failed to decode landing zone manifest", err).
			WithResource(identifier)
	}
	if manifest != nil {
		state.GovernedRegions = manifest.GovernedRegions
		state.IdentityCenterAccess = manifest.AccessManagement.Enabled
		state.CentralizedLogging = observedLogging(manifest.CentralizedLogging)
		state.ConfigHub = observedLogging(manifest.ConfigHub)
		state.SecurityOUName = securityOUName(manifest)
	}

	return state, nil
}

// PriorManifest fetches the manifest currently deployed for the
// identified landing zone.
func (c *LandingZoneClient) PriorManifest(ctx context.Context, identifier string) (*engine.Manifest, error) {
	var out *controltower.GetLandingZoneOutput
	err := c.call(ctx, "GetLandingZone", func() error {
		var callErr error
		out, callErr = c.client.GetLandingZone(ctx, &controltower.GetLandingZoneInput{
			LandingZoneIdentifier: aws.String(identifier),
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if out.LandingZone == nil || out.LandingZone.Manifest == nil {
		return nil, engine.NewServiceError("deployed manifest missing from provider response", nil).
			WithResource(identifier)
	}
	return decodeManifest(out.LandingZone.Manifest)
}

// Create submits a CREATE and returns its operation identifier.
func (c *LandingZoneClient) Create(ctx context.Context, manifest *engine.Manifest, version string) (string, error) {
	c.logger.Infof("Submitting landing zone CREATE at version %s", version)
	var out *controltower.CreateLandingZoneOutput
	err := c.call(ctx, "CreateLandingZone", func() error {
		var callErr error
		out, callErr = c.client.CreateLandingZone(ctx, &controltower.CreateLandingZoneInput{
			Manifest: document.NewLazyDocument(manifest),
			Version:  aws.String(version),
		})
		return callErr
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.OperationIdentifier), nil
}

// Update submits an UPDATE and returns its operation identifier.
func (c *LandingZoneClient) Update(ctx context.Context, identifier string, manifest *engine.Manifest, version string) (string, error) {
	c.logger.WithLandingZoneID(identifier).Infof("Submitting landing zone UPDATE at version %s", version)
	var out *controltower.UpdateLandingZoneOutput
	err := c.call(ctx, "UpdateLandingZone", func() error {
		var callErr error
		out, callErr = c.client.UpdateLandingZone(ctx, &controltower.UpdateLandingZoneInput{
			LandingZoneIdentifier: aws.String(identifier),
			Manifest:              document.NewLazyDocument(manifest),
			Version:               aws.String(version),
		})
		return callErr
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.OperationIdentifier), nil
}

// Reset submits a RESET and returns its operation identifier.
func (c *LandingZoneClient) Reset(ctx context.Context, identifier string) (string, error) {
	c.logger.WithLandingZoneID(identifier).Info("Submitting landing zone RESET")
	var out *controltower.ResetLandingZoneOutput
	err := c.call(ctx, "ResetLandingZone", func() error {
		var callErr error
		out, callErr = c.client.ResetLandingZone(ctx, &controltower.ResetLandingZoneInput{
			LandingZoneIdentifier: aws.String(identifier),
		})
		return callErr
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.OperationIdentifier), nil
}

// OperationStatus polls one landing zone operation. An empty status
// means the provider omitted the field; the poller treats that as a
// contract violation.
func (c *LandingZoneClient) OperationStatus(ctx context.Context, operationID string) (engine.OperationStatus, error) {
	var out *controltower.GetLandingZoneOperationOutput
	err := c.call(ctx, "GetLandingZoneOperation", func() error {
		var callErr error
		out, callErr = c.client.GetLandingZoneOperation(ctx, &controltower.GetLandingZoneOperationInput{
			OperationIdentifier: aws.String(operationID),
		})
		return callErr
	})
	if err != nil {
		return "", err
	}
	if out.OperationDetails == nil {
		return "", nil
	}
	return engine.OperationStatus(out.OperationDetails.Status), nil
}

// decodeManifest converts the smithy manifest document into the typed
// manifest.
func decodeManifest(doc interface {
	MarshalSmithyDocument() ([]byte, error)
}) (*engine.Manifest, error) {
	if doc == nil {
		return nil, nil
	}
	raw, err := doc.MarshalSmithyDocument()
	if err != nil {
		return nil, err
	}
	var manifest engine.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func observedLogging(block engine.LoggingBlock) engine.ObservedLogging {
	return engine.ObservedLogging{
		AccountID:                 block.AccountID,
		BucketRetentionDays:       block.Configurations.LoggingBucket.RetentionDays,
		AccessBucketRetentionDays: block.Configurations.AccessLoggingBucket.RetentionDays,
		KMSKeyArn:                 block.Configurations.KMSKeyArn,
	}
}

// securityOUName extracts the security OU name from a legacy manifest's
// organizationStructure block. Current-generation manifests do not carry
// it.
func securityOUName(m *engine.Manifest) string {
	if len(m.OrganizationStructure) == 0 {
		return ""
	}
	var structure struct {
		Security struct {
			Name string `json:"name"`
		} `json:"security"`
	}
	if err := json.Unmarshal(m.OrganizationStructure, &structure); err != nil {
		return ""
	}
	return structure.Security.Name
}
