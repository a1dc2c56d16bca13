// Package report writes the human-readable transcripts of every command:
// the analytics dashboard, media and comment listings, insights, raw
// responses and publish results. Output is plain text unless color is
// enabled and the writer is a terminal.
package report
