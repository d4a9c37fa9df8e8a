package pipeline

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/swaybuild/internal/config"
)

// Action is one concrete step a run would perform.
type Action struct {
	Stage   StageName `json:"stage"`
	Command string    `json:"command"`
}

// PlanOptions mirrors the run-time switches that change the action list.
type PlanOptions struct {
	SkipBuild   bool
	KeepScratch bool
}

// Plan renders the ordered actions a run of cfg would perform, without side effects.
func Plan(cfg *config.Config, opts PlanOptions) []Action {
	scratch := cfg.Workspace.Dir
	root := cfg.Output.Root
	var actions []Action
	add := func(stage StageName, format string, args ...any) {
		actions = append(actions, Action{Stage: stage, Command: fmt.Sprintf(format, args...)})
	}

	add(StagePrepareScratch, "mkdir -p %s", scratch)

	for _, r := range cfg.Repositories {
		args := []string{"git", "clone"}
		if r.Branch != "" {
			args = append(args, "--branch", r.Branch, "--single-branch")
		}
		if r.Depth > 0 {
			args = append(args, "--depth", strconv.Itoa(r.Depth))
		}
		args = append(args, r.URL, filepath.Join(scratch, r.Name))
		add(StageClone, "%s", strings.Join(args, " "))
	}

	if !opts.SkipBuild {
		cmd := strings.Join(append([]string{cfg.Build.Command}, cfg.Build.Args...), " ")
		for _, r := range cfg.Repositories {
			add(StageBuild, "(cd %s && %s)", filepath.Join(scratch, r.Name), cmd)
		}
	}

	for _, a := range cfg.Artifacts {
		add(StageLayout, "mkdir -p %s", filepath.Join(root, a.Name))
	}

	for _, a := range cfg.Artifacts {
		src := filepath.Join(scratch, a.Repository, filepath.FromSlash(a.Source))
		dst := filepath.Join(root, a.Name, path.Base(a.Source))
		add(StageRelocate, "mv %s %s", src, dst)
	}

	if !opts.KeepScratch && !cfg.Workspace.Keep {
		add(StageCleanup, "rm -rf %s", scratch)
	}
	return actions
}

// WritePlan prints actions one per line, grouped by stage.
func WritePlan(w io.Writer, actions []Action) error {
	var last StageName
	for _, a := range actions {
		if a.Stage != last {
			if _, err := fmt.Fprintf(w, "# %s\n", a.Stage); err != nil {
				return err
			}
			last = a.Stage
		}
		if _, err := fmt.Fprintf(w, "%s\n", a.Command); err != nil {
			return err
		}
	}
	return nil
}
