package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EnvironmentTarget names one account/region pair a bulk operation acts
// on.
type EnvironmentTarget struct {
	AccountID string
	Region    string
}

// BatchResult is the per-environment outcome of a bulk credential
// resolution. A failure is recorded here, never propagated, so the rest
// of the batch still completes.
type BatchResult struct {
	Target      EnvironmentTarget
	Credentials *Credentials
	Err         error
}

// ResolveEnvironmentCredentials resolves credentials for each target in
// caller-configured batches: all calls within a batch run concurrently
// and the whole batch is awaited before the next one starts. Batches
// only bound concurrency, not correctness; results keep input order.
func ResolveEnvironmentCredentials(
	ctx context.Context,
	targets []EnvironmentTarget,
	batchSize int,
	resolve CredentialResolverFunc,
) []BatchResult {
	if batchSize <= 0 {
		batchSize = 1
	}

	results := make([]BatchResult, len(targets))
	for start := 0; start < len(targets); start += batchSize {
		end := start + batchSize
		if end > len(targets) {
			end = len(targets)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				creds, err := resolve(ctx, targets[i])
				results[i] = BatchResult{
					Target:      targets[i],
					Credentials: creds,
					Err:         err,
				}
				return nil
			})
		}
		// Errors are recorded per environment; Wait only synchronizes.
		_ = g.Wait()
	}
	return results
}
