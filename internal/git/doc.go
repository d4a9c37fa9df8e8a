// Package git clones the source repositories of a build into the scratch
// directory.
//
// Clones use go-git, so no git binary is required. Authentication supports
// tokens, basic credentials and SSH keys. Clone failures are mapped to typed
// errors (auth, not found, unsupported protocol, rate limit, network timeout)
// and from there to classified errors for exit code selection. Permanent
// failures are never retried.
package git
