package config

const (
	DefaultConfigPath   = "swaybuild.yaml"
	DefaultWorkspaceDir = "tmp"
	DefaultOutputRoot   = "packages/mira-v1/sway_abi"
	DefaultBuildCommand = "forc"

	coreRepo      = "mira-v1-core"
	peripheryRepo = "mira-v1-periphery"
)

// DefaultBuildArgs are passed to the build command in each checkout.
func DefaultBuildArgs() []string { return []string{"build", "--release"} }

// Default returns the built-in plan: the AMM contract from the core repository
// and the five transaction scripts from the periphery repository.
func Default() *Config {
	scripts := []string{
		"add_liquidity_script",
		"create_pool_and_add_liquidity_script",
		"remove_liquidity_script",
		"swap_exact_input_script",
		"swap_exact_output_script",
	}
	artifacts := []Artifact{{
		Name:       "mira_amm_contract",
		Repository: coreRepo,
		Source:     "contracts/mira_amm_contract/out",
	}}
	for _, s := range scripts {
		artifacts = append(artifacts, Artifact{Name: s, Repository: peripheryRepo, Source: "scripts/" + s + "/out"})
	}

	return &Config{
		Workspace: WorkspaceConfig{Dir: DefaultWorkspaceDir},
		Output:    OutputConfig{Root: DefaultOutputRoot},
		Build:     BuildConfig{Command: DefaultBuildCommand, Args: DefaultBuildArgs()},
		Repositories: []Repository{
			{Name: coreRepo, URL: "https://github.com/mira-amm/mira-v1-core.git"},
			{Name: peripheryRepo, URL: "https://github.com/mira-amm/mira-v1-periphery.git"},
		},
		Artifacts: artifacts,
	}
}

// applyDefaults fills omitted scalar fields. The repository and artifact lists
// are replaced by the built-in plan only when both are omitted.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Workspace.Dir == "" {
		cfg.Workspace.Dir = def.Workspace.Dir
	}
	if cfg.Output.Root == "" {
		cfg.Output.Root = def.Output.Root
	}
	if cfg.Build.Command == "" {
		cfg.Build.Command = def.Build.Command
		if len(cfg.Build.Args) == 0 {
			cfg.Build.Args = def.Build.Args
		}
	}
	if len(cfg.Repositories) == 0 && len(cfg.Artifacts) == 0 {
		cfg.Repositories = def.Repositories
		cfg.Artifacts = def.Artifacts
	}
	if cfg.Retry.Backoff == "" {
		cfg.Retry.Backoff = RetryBackoffLinear
	} else if mode := NormalizeRetryBackoff(string(cfg.Retry.Backoff)); mode != "" {
		cfg.Retry.Backoff = mode
	}
}
