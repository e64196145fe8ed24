package engine

import (
	"fmt"
	"sort"
)

// NoChangeReason is the canonical no-op sentence returned when desired
// and observed state match.
const NoChangeReason = "There were no changes found to update or reset the Landing Zone."

// DriftReason is the reason attached to a reset decision caused by drift
// or a failed landing zone.
const DriftReason = "The Landing Zone has drifted or failed, resetting"

// Decision is the outcome of reconciling desired configuration against
// the observed landing zone. At most one of UpdateRequired/ResetRequired
// is true.
type Decision struct {
	// UpdateRequired is true when field-level differences call for an
	// UPDATE operation.
	UpdateRequired bool

	// ResetRequired is true when drift or failure calls for a RESET.
	// Drift takes precedence over field diffs.
	ResetRequired bool

	// TargetVersion is always the observed version unchanged; the engine
	// never decides to change the provider schema version.
	TargetVersion string

	// Reason is the ordered, period-and-space-joined list of field-level
	// change sentences, or the canonical no-op sentence.
	Reason string
}

// Decide compares the desired configuration against the observed state.
// The caller handles absence of a landing zone as CREATE before this
// engine runs; observed always names an existing landing zone here.
func Decide(desired *DesiredConfiguration, observed *ObservedState) Decision {
	decision := Decision{TargetVersion: observed.Version}

	// Any non-IN_SYNC drift value signals inconsistency or failure and
	// takes precedence over field diffs.
	if observed.DriftStatus != "" && observed.DriftStatus != DriftInSync {
		decision.ResetRequired = true
		decision.Reason = DriftReason
		return decision
	}

	diffs := fieldDiffs(desired, observed)
	if len(diffs) > 0 {
		decision.UpdateRequired = true
		decision.Reason = joinSentences(diffs)
		return decision
	}

	decision.Reason = NoChangeReason
	return decision
}

// fieldDiffs evaluates the tracked fields in their fixed order. Each
// field contributes at most one sentence, only when unequal.
func fieldDiffs(desired *DesiredConfiguration, observed *ObservedState) []string {
	var diffs []string

	add := func(name string, old, new interface{}) {
		diffs = append(diffs, fmt.Sprintf("%s changed from %v to %v", name, old, new))
	}

	if observed.CentralizedLogging.AccessBucketRetentionDays != desired.Logging.AccessBucketRetentionDays {
		add("Centralized logging access bucket retention",
			observed.CentralizedLogging.AccessBucketRetentionDays,
			desired.Logging.AccessBucketRetentionDays)
	}
	if observed.CentralizedLogging.BucketRetentionDays != desired.Logging.BucketRetentionDays {
		add("Centralized logging bucket retention",
			observed.CentralizedLogging.BucketRetentionDays,
			desired.Logging.BucketRetentionDays)
	}
	if observed.ConfigHub.AccessBucketRetentionDays != desired.ConfigHub.AccessBucketRetentionDays {
		add("Config hub access bucket retention",
			observed.ConfigHub.AccessBucketRetentionDays,
			desired.ConfigHub.AccessBucketRetentionDays)
	}
	if observed.ConfigHub.BucketRetentionDays != desired.ConfigHub.BucketRetentionDays {
		add("Config hub bucket retention",
			observed.ConfigHub.BucketRetentionDays,
			desired.ConfigHub.BucketRetentionDays)
	}
	if observed.IdentityCenterAccess != desired.IdentityCenterAccess {
		add("Identity console access",
			observed.IdentityCenterAccess, desired.IdentityCenterAccess)
	}
	if !sameRegionSet(observed.GovernedRegions, desired.GovernedRegions) {
		// An absent observed list reads as empty in the message but still
		// diffs against a non-empty desired list.
		add("Governed regions",
			observed.GovernedRegions, desired.GovernedRegions)
	}

	return diffs
}

// sameRegionSet compares two region lists order-insensitively.
func sameRegionSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func joinSentences(sentences []string) string {
	out := ""
	for i, s := range sentences {
		if i > 0 {
			out += ". "
		}
		out += s
	}
	return out
}

// ValidateVersion checks that the configured landing zone version matches
// the provider's latest available version. When reason and operationType
// are supplied the message explains why the operation is needed before
// instructing the operator to align the configured version.
func ValidateVersion(desired *DesiredConfiguration, observed *ObservedState, reason, operationType string) error {
	if observed.LatestAvailableVersion == "" ||
		desired.Version == observed.LatestAvailableVersion {
		return nil
	}

	msg := fmt.Sprintf(
		"configured version %s does not match the latest available version %s",
		desired.Version, observed.LatestAvailableVersion)
	if reason != "" && operationType != "" {
		msg = fmt.Sprintf(
			"%s. The %s operation is needed because: %s. Update the configured version to %s and retry",
			msg, operationType, reason, observed.LatestAvailableVersion)
	}
	return NewInvalidInputError(msg)
}
