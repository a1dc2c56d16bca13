// Package instagram is a client for the parts of the Instagram Graph API
// that account analytics needs: the account, its media, per-media insights
// and comments, plus comment posting and single image publishing.
//
// Every request carries the access token as a query parameter, waits on the
// configured rate limiter, and fails with an *errors.Error whose Type comes
// from the HTTP status refined by the Graph API error code. GET requests are
// retried for transient failures when a retrier is configured.
//
//	client := instagram.NewFromConfig(cfg, log)
//	account, err := client.GetAccount(ctx)
//	page, err := client.ListMedia(ctx, instagram.ListOptions{})
//	for _, m := range page.Data {
//	    insights, err := client.GetInsights(ctx, m.ID, instagram.MetricsFor(m))
//	    ...
//	}
package instagram
