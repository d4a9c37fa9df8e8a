// Package artifacts creates the output directory layout and relocates build
// outputs from repository checkouts into it.
//
// Artifact contents are never inspected: a relocation moves whatever
// directory the build tool left behind.
package artifacts
