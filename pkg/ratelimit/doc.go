// Package ratelimit keeps the client inside the Graph API request budget.
//
// Two Limiter implementations are provided. SlidingWindow counts requests in
// a moving window and is what ForHour returns. TokenBucket refills to full
// capacity once per period. Unlimited disables limiting.
//
// Wait respects context cancellation, so an interrupted run does not sit out
// the rest of the hour.
package ratelimit
