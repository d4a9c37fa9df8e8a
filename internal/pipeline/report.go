package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/swaybuild/internal/git"
	"git.home.luguber.info/inful/swaybuild/internal/metrics"
)

// Outcome is the final status of a run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StageReport records what happened to one stage.
type StageReport struct {
	Name       StageName           `json:"name"`
	Result     metrics.ResultLabel `json:"result"`
	DurationMS int64               `json:"duration_ms"`
	Error      string              `json:"error,omitempty"`
}

// ArtifactReport records one relocated artifact.
type ArtifactReport struct {
	Name        string `json:"name"`
	Repository  string `json:"repository"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Report summarizes a single run.
type Report struct {
	SchemaVersion  int               `json:"schema_version"`
	RunID          string            `json:"run_id"`
	Start          time.Time         `json:"start"`
	End            time.Time         `json:"end"`
	Outcome        Outcome           `json:"outcome"`
	FailedStage    StageName         `json:"failed_stage,omitempty"`
	Error          string            `json:"error,omitempty"`
	ScratchDir     string            `json:"scratch_dir,omitempty"`
	ScratchRemoved bool              `json:"scratch_removed"`
	SkippedBuild   bool              `json:"skipped_build,omitempty"`
	Stages         []StageReport     `json:"stages"`
	Repositories   []git.CloneResult `json:"repositories"`
	Artifacts      []ArtifactReport  `json:"artifacts"`
}

func newReport() *Report {
	return &Report{
		SchemaVersion: 1,
		RunID:         uuid.NewString(),
		Start:         time.Now(),
		Stages:        []StageReport{},
		Repositories:  []git.CloneResult{},
		Artifacts:     []ArtifactReport{},
	}
}

func (r *Report) recordStage(name StageName, result metrics.ResultLabel, d time.Duration, err error) {
	sr := StageReport{Name: name, Result: result, DurationMS: d.Milliseconds()}
	if err != nil {
		sr.Error = err.Error()
	}
	r.Stages = append(r.Stages, sr)
}

func (r *Report) finish(outcome Outcome, failed StageName, err error) {
	r.End = time.Now()
	r.Outcome = outcome
	r.FailedStage = failed
	if err != nil {
		r.Error = err.Error()
	}
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	s := fmt.Sprintf("run=%s outcome=%s repos=%d artifacts=%d duration=%s",
		r.RunID, r.Outcome, len(r.Repositories), len(r.Artifacts), r.Duration().Truncate(time.Millisecond))
	if r.FailedStage != "" {
		s += fmt.Sprintf(" failed_stage=%s", r.FailedStage)
	}
	return s
}

// WriteJSON writes the report to path atomically.
func (r *Report) WriteJSON(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("ensure report directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report json: %w", err)
	}
	return nil
}
