package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/swaybuild/internal/logfields"
	"git.home.luguber.info/inful/swaybuild/internal/metrics"
)

// runStages executes stages in order, recording timing and stopping on the first error.
// Stages after the failing one are recorded as skipped.
func runStages(ctx context.Context, st *State, stages []StageDef) (StageName, error) {
	for i, sd := range stages {
		select {
		case <-ctx.Done():
			err := canceled(sd.Name, ctx.Err())
			st.Report.recordStage(sd.Name, metrics.ResultCanceled, 0, err)
			st.Recorder.IncStageResult(string(sd.Name), metrics.ResultCanceled)
			skipRemaining(st, stages[i+1:])
			return sd.Name, err
		default:
		}

		slog.Info("Stage started", logfields.Stage(string(sd.Name)))
		t0 := time.Now()
		err := sd.Fn(ctx, st)
		dur := time.Since(t0)
		st.Recorder.ObserveStageDuration(string(sd.Name), dur)

		if err != nil {
			result := metrics.ResultFailed
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				result = metrics.ResultCanceled
				err = canceled(sd.Name, err)
			}
			st.Report.recordStage(sd.Name, result, dur, err)
			st.Recorder.IncStageResult(string(sd.Name), result)
			slog.Error("Stage failed",
				logfields.Stage(string(sd.Name)),
				logfields.Duration(dur),
				logfields.Error(err))
			skipRemaining(st, stages[i+1:])
			return sd.Name, err
		}

		st.Report.recordStage(sd.Name, metrics.ResultSuccess, dur, nil)
		st.Recorder.IncStageResult(string(sd.Name), metrics.ResultSuccess)
		slog.Info("Stage completed", logfields.Stage(string(sd.Name)), logfields.Duration(dur))
	}
	return "", nil
}

func skipRemaining(st *State, rest []StageDef) {
	for _, sd := range rest {
		st.Report.recordStage(sd.Name, metrics.ResultSkipped, 0, nil)
		st.Recorder.IncStageResult(string(sd.Name), metrics.ResultSkipped)
	}
}

func canceled(stage StageName, err error) error {
	if ferrors.HasCategory(err, ferrors.CategoryCanceled) {
		return err
	}
	return ferrors.CanceledError("run canceled").
		WithCause(err).
		WithContext("stage", string(stage)).
		Build()
}
