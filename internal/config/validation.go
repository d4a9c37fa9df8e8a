package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateRepositories(); err != nil {
		return err
	}
	return c.validateArtifacts()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Workspace.Dir) == "" {
		return invalid("workspace.dir must not be empty")
	}
	if strings.TrimSpace(c.Output.Root) == "" {
		return invalid("output.root must not be empty")
	}
	ws, err := filepath.Abs(c.Workspace.Dir)
	if err != nil {
		return invalid("workspace.dir: %v", err)
	}
	out, err := filepath.Abs(c.Output.Root)
	if err != nil {
		return invalid("output.root: %v", err)
	}
	if within(ws, out) || within(out, ws) {
		return invalid("output.root %q and workspace.dir %q must not overlap", c.Output.Root, c.Workspace.Dir)
	}
	return nil
}

// within reports whether path equals base or lies below it.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (c *Config) validateBuild() error {
	if strings.TrimSpace(c.Build.Command) == "" {
		return invalid("build.command must not be empty")
	}
	if c.Build.Timeout != "" {
		d, err := time.ParseDuration(c.Build.Timeout)
		if err != nil || d < 0 {
			return invalid("build.timeout %q is not a valid duration", c.Build.Timeout)
		}
	}
	return nil
}

func (c *Config) validateRetry() error {
	r := c.Retry
	if r.MaxRetries < 0 {
		return invalid("retry.max_retries cannot be negative")
	}
	for field, raw := range map[string]string{"initial_delay": r.InitialDelay, "max_delay": r.MaxDelay} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return invalid("retry.%s %q is not a positive duration", field, raw)
		}
	}
	if r.Backoff != "" && NormalizeRetryBackoff(string(r.Backoff)) == "" {
		return invalid("retry.backoff %q must be fixed, linear or exponential", r.Backoff)
	}
	return nil
}

func (c *Config) validateRepositories() error {
	if len(c.Repositories) == 0 {
		return invalid("at least one repository must be configured")
	}
	seen := make(map[string]struct{}, len(c.Repositories))
	for i, r := range c.Repositories {
		if err := validName(r.Name); err != nil {
			return invalid("repositories[%d].name: %v", i, err)
		}
		if _, dup := seen[r.Name]; dup {
			return invalid("duplicate repository name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
		if strings.TrimSpace(r.URL) == "" {
			return invalid("repository %q: url must not be empty", r.Name)
		}
		if r.Depth < 0 {
			return invalid("repository %q: depth cannot be negative", r.Name)
		}
		if r.Auth != nil {
			switch r.Auth.Type {
			case "", "none", "ssh", "token", "basic":
			default:
				return invalid("repository %q: unsupported auth type %q", r.Name, r.Auth.Type)
			}
		}
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	if len(c.Artifacts) == 0 {
		return invalid("at least one artifact must be configured")
	}
	seen := make(map[string]struct{}, len(c.Artifacts))
	for i, a := range c.Artifacts {
		if err := validName(a.Name); err != nil {
			return invalid("artifacts[%d].name: %v", i, err)
		}
		if _, dup := seen[a.Name]; dup {
			return invalid("duplicate artifact name %q", a.Name)
		}
		seen[a.Name] = struct{}{}
		if _, ok := c.RepositoryByName(a.Repository); !ok {
			return invalid("artifact %q references unknown repository %q", a.Name, a.Repository)
		}
		if err := validSource(a.Source); err != nil {
			return invalid("artifact %q: source %v", a.Name, err)
		}
	}
	return nil
}

// validName accepts a single path element usable as a directory name.
func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("%q is reserved", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%q must not contain path separators", name)
	}
	return nil
}

// validSource accepts a relative path that stays inside the checkout.
func validSource(src string) error {
	if strings.TrimSpace(src) == "" {
		return errors.New("must not be empty")
	}
	if filepath.IsAbs(src) || strings.HasPrefix(src, "/") {
		return fmt.Errorf("%q must be relative to the checkout", src)
	}
	clean := filepath.Clean(filepath.FromSlash(src))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%q must name a directory inside the checkout", src)
	}
	return nil
}
