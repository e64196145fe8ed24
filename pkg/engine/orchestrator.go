package engine

import (
	"context"
	"fmt"

	"github.com/towerctl/towerctl/pkg/telemetry"
)

// Request is the single operation call the surrounding CLI hands to the
// orchestrator.
type Request struct {
	// Operation names the requested workflow; "deploy" is the only one
	// the orchestrator owns.
	Operation string

	// Partition is the cloud partition (e.g. aws, aws-us-gov).
	Partition string

	// Region is the home region of the landing zone.
	Region string

	// Configuration is the validated desired configuration.
	Configuration *DesiredConfiguration

	// DryRun computes and reports the decision without mutating anything.
	DryRun bool

	// UseExistingRole skips delegated role creation during prerequisites.
	UseExistingRole bool
}

// Orchestrator composes the decision engine, manifest builder, poller,
// and prerequisite setup into the full create/update/reset workflow.
// All entities it computes are owned by a single Run call; nothing
// outlives the invocation.
type Orchestrator struct {
	landingZones LandingZoneService
	prereqs      *PrerequisiteOrchestrator
	poller       *Poller
	logger       *telemetry.Logger
	metrics      *telemetry.Metrics
}

// NewOrchestrator wires the top-level handler.
func NewOrchestrator(
	landingZones LandingZoneService,
	prereqs *PrerequisiteOrchestrator,
	poller *Poller,
	logger *telemetry.Logger,
	metrics *telemetry.Metrics,
) *Orchestrator {
	return &Orchestrator{
		landingZones: landingZones,
		prereqs:      prereqs,
		poller:       poller,
		logger:       logger.NewComponentLogger("orchestrator"),
		metrics:      metrics,
	}
}

// Run reconciles the landing zone against the desired configuration and
// returns a human-readable status message.
func (o *Orchestrator) Run(ctx context.Context, req *Request) (string, error) {
	if req.Operation != "deploy" {
		return "", NewInvalidInputError(fmt.Sprintf("unsupported operation %q", req.Operation))
	}
	if req.Configuration == nil {
		return "", NewInvalidInputError("no configuration supplied")
	}
	desired := req.Configuration

	o.logger.WithField("partition", req.Partition).
		WithField("region", req.Region).
		Debug("Reconciling landing zone")

	observed, err := o.landingZones.Find(ctx)
	if err != nil {
		return "", err
	}

	if !observed.Exists() {
		if req.DryRun {
			return "Dry run: no Landing Zone found, a new Landing Zone would be created.", nil
		}
		return o.create(ctx, req)
	}

	logger := o.logger.WithLandingZoneID(observed.Identifier)
	decision := Decide(desired, observed)
	logger.WithField("reason", decision.Reason).Info("Reconciliation decision computed")

	if req.DryRun {
		return o.preview(decision), nil
	}

	if !decision.UpdateRequired && !decision.ResetRequired {
		o.metrics.RecordOperation("noop", "success")
		return decision.Reason, nil
	}

	// The provider accepts one operation at a time; fail before
	// submitting rather than racing the in-flight execution.
	if observed.Status == StatusProcessing {
		return "", NewConflictError(fmt.Sprintf(
			"Landing Zone %s is processing another execution, wait for it to finish before deploying",
			observed.Identifier)).WithResource(observed.Identifier)
	}

	operationType := "update"
	if decision.ResetRequired {
		operationType = "reset"
	}
	if err := ValidateVersion(desired, observed, decision.Reason, operationType); err != nil {
		return "", err
	}

	if decision.ResetRequired {
		return o.reset(ctx, observed)
	}
	return o.update(ctx, desired, observed, decision)
}

// preview renders the dry-run decision without acting on it.
func (o *Orchestrator) preview(decision Decision) string {
	switch {
	case decision.ResetRequired:
		return "Dry run: the Landing Zone would be reset. " + decision.Reason
	case decision.UpdateRequired:
		return "Dry run: the Landing Zone would be updated. " + decision.Reason
	default:
		return "Dry run: no changes. " + decision.Reason
	}
}

// create runs the prerequisite setup, builds the CREATE manifest, and
// drives the CREATE operation to a terminal state.
func (o *Orchestrator) create(ctx context.Context, req *Request) (string, error) {
	o.logger.Info("No Landing Zone found, creating")
	desired := req.Configuration

	accounts, keys, err := o.prereqs.Run(ctx, desired, req.UseExistingRole)
	if err != nil {
		o.metrics.RecordOperation("create", "failure")
		return "", err
	}

	manifest := BuildManifest(desired, EventCreate, keys, accounts, nil)

	record, err := o.poller.Run(ctx,
		func(ctx context.Context) (string, error) {
			return o.landingZones.Create(ctx, manifest, desired.Version)
		},
		o.pollStatus("create"),
	)
	if err != nil {
		o.metrics.RecordOperation("create", "failure")
		return "", err
	}

	o.metrics.RecordOperation("create", "success")
	o.logger.WithOperationID(record.Identifier).Info("Landing Zone deployed")
	return "Landing Zone deployed successfully.", nil
}

// update builds the UPDATE manifest from the prior manifest's key ARNs
// and drives the UPDATE operation to a terminal state.
func (o *Orchestrator) update(ctx context.Context, desired *DesiredConfiguration, observed *ObservedState, decision Decision) (string, error) {
	manifest, err := o.nextManifest(ctx, desired, observed)
	if err != nil {
		o.metrics.RecordOperation("update", "failure")
		return "", err
	}

	record, err := o.poller.Run(ctx,
		func(ctx context.Context) (string, error) {
			return o.landingZones.Update(ctx, observed.Identifier, manifest, decision.TargetVersion)
		},
		o.pollStatus("update"),
	)
	if err != nil {
		o.metrics.RecordOperation("update", "failure")
		return "", err
	}

	o.metrics.RecordOperation("update", "success")
	o.logger.WithOperationID(record.Identifier).Info("Landing Zone updated")
	return fmt.Sprintf("Landing Zone %s update completed successfully.", observed.Identifier), nil
}

// reset drives a RESET operation to a terminal state.
func (o *Orchestrator) reset(ctx context.Context, observed *ObservedState) (string, error) {
	record, err := o.poller.Run(ctx,
		func(ctx context.Context) (string, error) {
			return o.landingZones.Reset(ctx, observed.Identifier)
		},
		o.pollStatus("reset"),
	)
	if err != nil {
		o.metrics.RecordOperation("reset", "failure")
		return "", err
	}

	o.metrics.RecordOperation("reset", "success")
	o.logger.WithOperationID(record.Identifier).Info("Landing Zone reset")
	return fmt.Sprintf("Landing Zone %s reset completed successfully.", observed.Identifier), nil
}

// nextManifest assembles the manifest for an update or reset: shared
// accounts re-resolved from the directory, key ARNs lifted from the
// prior manifest (the config-hub key is absent on legacy schemas).
func (o *Orchestrator) nextManifest(ctx context.Context, desired *DesiredConfiguration, observed *ObservedState) (*Manifest, error) {
	prior, err := o.landingZones.PriorManifest(ctx, observed.Identifier)
	if err != nil {
		return nil, err
	}

	keys := KeyArns{
		CentralizedLogging: prior.CentralizedLogging.Configurations.KMSKeyArn,
		ConfigHub:          prior.ConfigHub.Configurations.KMSKeyArn,
	}

	accounts, err := o.prereqs.ResolveAccounts(ctx, desired)
	if err != nil {
		return nil, err
	}
	if accounts.ManagementID == "" || accounts.LoggingID == "" || accounts.AuditID == "" {
		return nil, NewServiceError(
			"one or more shared accounts could not be resolved from the organization", nil).
			WithResource(observed.Identifier)
	}

	return BuildManifest(desired, EventUpdate, keys, accounts, prior), nil
}

// pollStatus adapts the landing zone operation API to the poller and
// records each poll.
func (o *Orchestrator) pollStatus(operationType string) PollFunc {
	return func(ctx context.Context, id string) (OperationStatus, error) {
		o.metrics.RecordPoll(operationType)
		return o.landingZones.OperationStatus(ctx, id)
	}
}
