package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/swaybuild/internal/config"
	"git.home.luguber.info/inful/swaybuild/internal/forc"
	"git.home.luguber.info/inful/swaybuild/internal/git"
	"git.home.luguber.info/inful/swaybuild/internal/logfields"
	"git.home.luguber.info/inful/swaybuild/internal/metrics"
	"git.home.luguber.info/inful/swaybuild/internal/retry"
	"git.home.luguber.info/inful/swaybuild/internal/workspace"
)

// Pipeline runs a configured plan end to end.
type Pipeline struct {
	cfg       config.Config
	cloner    Cloner
	builder   forc.Builder
	recorder  metrics.Recorder
	skipBuild bool
	stages    []StageDef
}

// Option configures pipeline behavior.
type Option func(*Pipeline)

// WithCloner replaces the go-git based cloner.
func WithCloner(c Cloner) Option {
	return func(p *Pipeline) { p.cloner = c }
}

// WithBuilder replaces the build tool runner.
func WithBuilder(b forc.Builder) Option {
	return func(p *Pipeline) { p.builder = b }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithKeepScratch overrides workspace.keep from the configuration.
func WithKeepScratch(keep bool) Option {
	return func(p *Pipeline) { p.cfg.Workspace.Keep = p.cfg.Workspace.Keep || keep }
}

// WithSkipBuild replaces the build tool with a no-op so prebuilt checkouts can be relocated.
func WithSkipBuild(skip bool) Option {
	return func(p *Pipeline) { p.skipBuild = skip }
}

// New creates a pipeline for cfg. The configuration is copied.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      *cfg,
		recorder: metrics.NoopRecorder{},
		stages:   defaultStages(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes all stages. The report is always returned, also on failure.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	ws := workspace.NewManager(p.cfg.Workspace.Dir).WithKeep(p.cfg.Workspace.Keep)

	cloner := p.cloner
	if cloner == nil {
		cloner = git.NewClient(ws.Path()).WithRetryPolicy(retry.FromConfig(p.cfg.Retry))
	}
	var builder forc.Builder
	switch {
	case p.skipBuild:
		builder = forc.NoopBuilder{}
	case p.builder != nil:
		builder = p.builder
	default:
		builder = forc.NewBinaryBuilder(p.cfg.Build)
	}

	st := &State{
		Config:     &p.cfg,
		Workspace:  ws,
		Cloner:     cloner,
		Builder:    builder,
		Recorder:   p.recorder,
		Report:     newReport(),
		Checkouts:  make(map[string]git.CloneResult, len(p.cfg.Repositories)),
		OutputDirs: make(map[string]string, len(p.cfg.Artifacts)),
	}
	st.Report.SkippedBuild = p.skipBuild

	slog.Info("Run started",
		logfields.RunID(st.Report.RunID),
		slog.Int("repositories", len(p.cfg.Repositories)),
		slog.Int("artifacts", len(p.cfg.Artifacts)))

	failed, err := runStages(ctx, st, p.stages)
	outcome := OutcomeSuccess
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = OutcomeCanceled
	case err != nil:
		outcome = OutcomeFailed
	}
	st.Report.finish(outcome, failed, err)
	p.recordOutcome(st.Report)

	if err != nil {
		slog.Error("Run failed",
			logfields.RunID(st.Report.RunID),
			logfields.Stage(string(failed)),
			logfields.Path(ws.Path()),
			logfields.Error(err))
		return st.Report, err
	}
	slog.Info("Run completed", logfields.RunID(st.Report.RunID), logfields.Duration(st.Report.Duration()))
	return st.Report, nil
}

func (p *Pipeline) recordOutcome(r *Report) {
	p.recorder.ObserveBuildDuration(r.End.Sub(r.Start))
	switch r.Outcome {
	case OutcomeSuccess:
		p.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	case OutcomeCanceled:
		p.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
	default:
		p.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	}
}
