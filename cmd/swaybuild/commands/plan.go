package commands

import "git.home.luguber.info/inful/swaybuild/internal/pipeline"

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	SkipBuild   bool `name:"skip-build" help:"Plan without the build tool step"`
	KeepScratch bool `name:"keep-scratch" help:"Plan without removing the scratch directory"`
}

func (p *PlanCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	actions := pipeline.Plan(cfg, pipeline.PlanOptions{SkipBuild: p.SkipBuild, KeepScratch: p.KeepScratch})
	return pipeline.WritePlan(g.out(), actions)
}
