package pipeline

import "context"

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareScratch StageName = "prepare_scratch"
	StageClone          StageName = "clone"
	StageBuild          StageName = "build"
	StageLayout         StageName = "layout"
	StageRelocate       StageName = "relocate"
	StageCleanup        StageName = "cleanup"
)

// Stage executes one step against the shared run state.
type Stage func(ctx context.Context, st *State) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// defaultStages returns the canonical stage sequence.
func defaultStages() []StageDef {
	return []StageDef{
		{StagePrepareScratch, stagePrepareScratch},
		{StageClone, stageClone},
		{StageBuild, stageBuild},
		{StageLayout, stageLayout},
		{StageRelocate, stageRelocate},
		{StageCleanup, stageCleanup},
	}
}
