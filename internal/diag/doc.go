// Package diag collects the non-fatal diagnostics raised while loading,
// lexing and emitting tag records.
//
// Diagnostics are accumulated in a Collector owned by one run rather than
// returned as errors, so a single malformed line never aborts the parse.
// At the end of a run, HasCritical decides whether the run succeeded.
package diag
