package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/swaybuild/internal/config"
	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/swaybuild/internal/logfields"
	"git.home.luguber.info/inful/swaybuild/internal/metrics"
	"git.home.luguber.info/inful/swaybuild/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SkipBuild   bool   `name:"skip-build" help:"Do not run the build tool; relocate outputs already present in the checkouts"`
	DryRun      bool   `name:"dry-run" help:"Print the planned actions without executing them"`
	Report      string `name:"report" help:"Write a JSON run report to this path" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path" type:"path"`
	KeepScratch bool   `name:"keep-scratch" help:"Keep the scratch directory after a successful run"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if b.DryRun {
		return pipeline.WritePlan(g.out(), pipeline.Plan(cfg, b.planOptions()))
	}
	return RunBuild(g, cfg, b)
}

func (b *BuildCmd) planOptions() pipeline.PlanOptions {
	return pipeline.PlanOptions{SkipBuild: b.SkipBuild, KeepScratch: b.KeepScratch}
}

// RunBuild executes the pipeline for cfg and writes the requested side outputs.
func RunBuild(g *Global, cfg *config.Config, b *BuildCmd, opts ...pipeline.Option) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if b.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	opts = append([]pipeline.Option{
		pipeline.WithRecorder(recorder),
		pipeline.WithKeepScratch(b.KeepScratch),
		pipeline.WithSkipBuild(b.SkipBuild),
	}, opts...)

	report, runErr := pipeline.New(cfg, opts...).Run(g.ctx())

	if b.Report != "" {
		if err := report.WriteJSON(b.Report); err != nil {
			slog.Warn("Failed to write run report", logfields.Path(b.Report), logfields.Error(err))
			if runErr == nil {
				runErr = ferrors.WrapError(err, ferrors.CategoryFileSystem, "write run report").
					WithContext("path", b.Report).
					Build()
			}
		}
	}
	if prom != nil {
		if err := prom.WriteTextfile(b.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(err))
			if runErr == nil {
				runErr = ferrors.WrapError(err, ferrors.CategoryFileSystem, "write metrics file").
					WithContext("path", b.MetricsFile).
					Build()
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	_, err := fmt.Fprintf(g.out(), "Build complete: %d artifacts in %s (%s)\n",
		len(report.Artifacts), cfg.Output.Root, report.Summary())
	return err
}
