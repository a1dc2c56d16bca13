// Package enrich runs per-item work with bounded concurrency while keeping
// results in input order.
package enrich
