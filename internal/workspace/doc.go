// Package workspace manages the scratch directory that holds repository
// checkouts while a build runs.
//
// The scratch directory lives at a fixed path. Create empties any leftovers
// from an earlier failed run, and Cleanup removes the directory once the
// artifacts have been relocated. A failed run never calls Cleanup, so the
// checkouts stay available for inspection.
package workspace
