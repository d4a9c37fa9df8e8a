package pipeline

import (
	"context"

	"git.home.luguber.info/inful/swaybuild/internal/config"
	"git.home.luguber.info/inful/swaybuild/internal/forc"
	"git.home.luguber.info/inful/swaybuild/internal/git"
	"git.home.luguber.info/inful/swaybuild/internal/metrics"
	"git.home.luguber.info/inful/swaybuild/internal/workspace"
)

// Cloner fetches one repository into the scratch directory.
type Cloner interface {
	Clone(ctx context.Context, repo config.Repository) (git.CloneResult, error)
}

// State carries everything stages share during one run.
type State struct {
	Config    *config.Config
	Workspace *workspace.Manager
	Cloner    Cloner
	Builder   forc.Builder
	Recorder  metrics.Recorder
	Report    *Report

	// Checkouts maps repository name to its clone result, filled by the clone stage.
	Checkouts map[string]git.CloneResult
	// OutputDirs maps artifact name to its output directory, filled by the layout stage.
	OutputDirs map[string]string
}
