// Package retry re-runs Graph API calls that failed for transient reasons.
//
// Only network failures, rate limiting and server errors are retried, as
// classified by pkg/errors. Everything else is returned after the first
// attempt. Delays grow exponentially with jitter, and rate limited calls use
// a slower schedule derived from the same settings.
//
//	cfg := retry.FromSettings(settings.Retry, log)
//	account, err := retry.DoWithResult(ctx, func(ctx context.Context) (*Account, error) {
//	    return fetch(ctx)
//	}, cfg)
package retry
