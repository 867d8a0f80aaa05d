// Package analytics holds the sales table operations shared by the console report and
// the dashboard API: calendar feature derivation, duplicate cleaning, set-membership
// filtering and group/reduce/sort/limit aggregation.
//
// Every function is a pure transform: it reads a model.Table and returns a new Table
// or result without modifying its input, so any number of goroutines may filter and
// aggregate the same Table concurrently without locking.
//
// Filter semantics are strict: an empty allowed set for a dimension rejects every row.
// Callers that want "no filter" on a dimension pass Options(table).Criteria(), which
// selects every distinct value present.
package analytics
