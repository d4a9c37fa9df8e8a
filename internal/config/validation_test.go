package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty workspace", func(c *Config) { c.Workspace.Dir = "" }, "workspace.dir"},
		{"empty output", func(c *Config) { c.Output.Root = " " }, "output.root"},
		{"output inside scratch", func(c *Config) { c.Output.Root = "tmp/out" }, "must not overlap"},
		{"scratch inside output", func(c *Config) { c.Workspace.Dir = "packages/mira-v1/sway_abi/tmp" }, "must not overlap"},
		{"same dir", func(c *Config) { c.Output.Root = "./tmp" }, "must not overlap"},
		{"empty command", func(c *Config) { c.Build.Command = "" }, "build.command"},
		{"bad timeout", func(c *Config) { c.Build.Timeout = "soon" }, "build.timeout"},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }, "max_retries"},
		{"bad delay", func(c *Config) { c.Retry.InitialDelay = "0s" }, "initial_delay"},
		{"bad backoff", func(c *Config) { c.Retry.Backoff = "random" }, "retry.backoff"},
		{"no repositories", func(c *Config) { c.Repositories = nil }, "at least one repository"},
		{"duplicate repository", func(c *Config) { c.Repositories[1].Name = c.Repositories[0].Name }, "duplicate repository"},
		{"repo name with slash", func(c *Config) { c.Repositories[0].Name = "a/b" }, "path separators"},
		{"empty url", func(c *Config) { c.Repositories[0].URL = "" }, "url must not be empty"},
		{"bad auth", func(c *Config) { c.Repositories[0].Auth = &AuthConfig{Type: "kerberos"} }, "unsupported auth type"},
		{"no artifacts", func(c *Config) { c.Artifacts = nil }, "at least one artifact"},
		{"duplicate artifact", func(c *Config) { c.Artifacts[2].Name = c.Artifacts[1].Name }, "duplicate artifact"},
		{"unknown repository", func(c *Config) { c.Artifacts[0].Repository = "nope" }, "unknown repository"},
		{"absolute source", func(c *Config) { c.Artifacts[0].Source = "/etc" }, "must be relative"},
		{"escaping source", func(c *Config) { c.Artifacts[0].Source = "../../etc" }, "inside the checkout"},
		{"dot source", func(c *Config) { c.Artifacts[0].Source = "./" }, "inside the checkout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_AcceptsAuthAndRetry(t *testing.T) {
	cfg := Default()
	cfg.Repositories[0].Auth = &AuthConfig{Type: "token", Token: "x"}
	cfg.Retry = RetryConfig{MaxRetries: 2, InitialDelay: "1s", MaxDelay: "5s", Backoff: RetryBackoffExponential}
	cfg.Build.Timeout = "10m"
	assert.NoError(t, cfg.Validate())
}
