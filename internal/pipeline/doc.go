// Package pipeline runs a swaybuild plan as a fixed sequence of stages:
//
//	prepare_scratch -> clone -> build -> layout -> relocate -> cleanup
//
// Execution is strictly sequential and fail-fast. The first stage that
// returns an error aborts the run, later stages are recorded as skipped, and
// the scratch directory is left in place for inspection. Every run produces
// a Report describing what happened.
package pipeline
