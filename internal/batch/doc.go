// Package batch converts an ordered list of files to one target
// format, one file at a time. It validates the inputs, selects the
// target when none was given, allocates an output directory for large
// batches, and aggregates per-file outcomes while supporting
// cooperative cancellation of the file in flight.
package batch
