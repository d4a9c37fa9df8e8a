package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one complete artifact build: which repositories to clone,
// how to build them and where the resulting outputs are relocated.
type Config struct {
	Workspace    WorkspaceConfig `yaml:"workspace"`
	Output       OutputConfig    `yaml:"output"`
	Build        BuildConfig     `yaml:"build"`
	Retry        RetryConfig     `yaml:"retry,omitempty"`
	Repositories []Repository    `yaml:"repositories"`
	Artifacts    []Artifact      `yaml:"artifacts"`
}

// WorkspaceConfig controls the scratch directory holding the checkouts.
type WorkspaceConfig struct {
	Dir string `yaml:"dir"`
	// Keep leaves the scratch directory in place after a successful run.
	Keep bool `yaml:"keep,omitempty"`
}

// OutputConfig controls where relocated artifacts end up.
type OutputConfig struct {
	Root string `yaml:"root"`
}

// BuildConfig describes the external build tool invocation run in each checkout.
type BuildConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env,omitempty"`
	Timeout string            `yaml:"timeout,omitempty"` // Go duration, empty means no limit
}

// RetryConfig configures clone retries. Zero retries mirrors plain fail-fast behaviour.
type RetryConfig struct {
	MaxRetries   int              `yaml:"max_retries,omitempty"`
	InitialDelay string           `yaml:"initial_delay,omitempty"`
	MaxDelay     string           `yaml:"max_delay,omitempty"`
	Backoff      RetryBackoffMode `yaml:"backoff,omitempty"`
}

// Repository represents a Git repository to clone and build.
type Repository struct {
	Name   string      `yaml:"name"`
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Depth  int         `yaml:"depth,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Type     string `yaml:"type"` // "none", "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// Artifact maps a build output directory inside a checkout to a named output directory.
type Artifact struct {
	Name       string `yaml:"name"`
	Repository string `yaml:"repository"`
	Source     string `yaml:"source"` // relative to the checkout root
}

// ErrConfigExists is returned by Init when the target file exists and force is not set.
var ErrConfigExists = errors.New("configuration file already exists")

// Load reads configuration from configPath. A missing file yields the built-in plan.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("No configuration file found, using built-in plan", slog.String("path", configPath))
		cfg := Default()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML content, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes the built-in plan to configPath as a starting point for customisation.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, configPath)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# swaybuild configuration\n# Values support ${ENV_VAR} expansion; .env and .env.local are loaded first.\n\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	slog.Info("Configuration file created", slog.String("path", configPath))
	return nil
}

// RepositoryByName returns the repository with the given name.
func (c *Config) RepositoryByName(name string) (Repository, bool) {
	for _, r := range c.Repositories {
		if r.Name == name {
			return r, true
		}
	}
	return Repository{}, false
}

// ArtifactsFor returns the artifacts produced by one repository, in configured order.
func (c *Config) ArtifactsFor(repo string) []Artifact {
	var out []Artifact
	for _, a := range c.Artifacts {
		if a.Repository == repo {
			out = append(out, a)
		}
	}
	return out
}
