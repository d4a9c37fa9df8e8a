// Package errors provides the classified error primitives used across swaybuild.
//
// A ClassifiedError carries a category (config, git, build, filesystem, ...),
// a severity and a retry strategy next to the usual message and cause. The
// CLI adapter turns those into exit codes and user-facing messages.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryGit, "clone failed").
//		Retryable().
//		WithContext("url", repoURL).
//		Build()
package errors
