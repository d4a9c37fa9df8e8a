package forc

import "errors"

var (
	// ErrToolNotFound indicates the build executable was not detected on PATH.
	ErrToolNotFound = errors.New("build tool not found")
	// ErrBuildFailed indicates the build command returned a non-zero exit status.
	ErrBuildFailed = errors.New("build failed")
	// ErrCheckoutMissing indicates the directory to build in does not exist.
	ErrCheckoutMissing = errors.New("checkout directory not found")
)
