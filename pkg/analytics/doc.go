// Package analytics builds the account report: every post of the first
// media page (or all pages on request) enriched with its insights and
// comments, the derived engagement and reel completion figures, and the
// totals across posts.
//
// Only the account and media list fetches are fatal. Insights and comments
// are fetched per post on a best-effort basis, optionally in parallel, and
// the report keeps the listing order either way.
package analytics
