package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/swaybuild/internal/artifacts"
	"git.home.luguber.info/inful/swaybuild/internal/forc"
	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/swaybuild/internal/logfields"
)

func stagePrepareScratch(_ context.Context, st *State) error {
	if err := st.Workspace.Create(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create scratch directory").
			Fatal().
			WithContext("path", st.Workspace.Path()).
			Build()
	}
	st.Report.ScratchDir = st.Workspace.Path()
	return nil
}

func stageClone(ctx context.Context, st *State) error {
	for _, repo := range st.Config.Repositories {
		if err := ctx.Err(); err != nil {
			return err
		}
		slog.Info("Cloning repository", logfields.Repository(repo.Name), logfields.URL(repo.URL))
		start := time.Now()
		res, err := st.Cloner.Clone(ctx, repo)
		st.Recorder.ObserveCloneRepoDuration(repo.Name, time.Since(start), err == nil)
		if err != nil {
			slog.Error("Failed to clone repository", logfields.Repository(repo.Name), logfields.Error(err))
			return err
		}
		st.Checkouts[repo.Name] = res
		st.Report.Repositories = append(st.Report.Repositories, res)
	}
	return nil
}

func stageBuild(ctx context.Context, st *State) error {
	for _, repo := range st.Config.Repositories {
		if err := ctx.Err(); err != nil {
			return err
		}
		checkout := st.Checkouts[repo.Name]
		start := time.Now()
		err := st.Builder.Build(ctx, checkout.Path)
		st.Recorder.ObserveRepoBuildDuration(repo.Name, time.Since(start), err == nil)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			b := ferrors.WrapError(err, ferrors.CategoryBuild, "build tool failed").
				Fatal().
				WithContext("repository", repo.Name).
				WithContext("path", checkout.Path)
			if errors.Is(err, forc.ErrToolNotFound) {
				b = ferrors.WrapError(err, ferrors.CategoryBuild, "build tool not installed").
					Fatal().
					UserAction().
					WithContext("repository", repo.Name)
			}
			return b.Build()
		}
	}
	return nil
}

func stageLayout(_ context.Context, st *State) error {
	names := make([]string, 0, len(st.Config.Artifacts))
	for _, a := range st.Config.Artifacts {
		names = append(names, a.Name)
	}
	dirs, err := artifacts.Layout(st.Config.Output.Root, names)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output layout").
			Fatal().
			WithContext("path", st.Config.Output.Root).
			Build()
	}
	st.OutputDirs = dirs
	return nil
}

func stageRelocate(ctx context.Context, st *State) error {
	for _, a := range st.Config.Artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := filepath.Join(st.Checkouts[a.Repository].Path, filepath.FromSlash(a.Source))
		dst, err := artifacts.Relocate(src, st.OutputDirs[a.Name])
		if err != nil {
			msg := "relocate artifact"
			if errors.Is(err, artifacts.ErrSourceMissing) {
				msg = "build output missing"
			}
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).
				Fatal().
				WithContext("artifact", a.Name).
				WithContext("source", src).
				Build()
		}
		st.Recorder.IncArtifactRelocated(a.Name)
		st.Report.Artifacts = append(st.Report.Artifacts, ArtifactReport{
			Name:        a.Name,
			Repository:  a.Repository,
			Source:      a.Source,
			Destination: dst,
		})
		slog.Info("Artifact relocated", logfields.Artifact(a.Name), logfields.Path(dst))
	}
	return nil
}

func stageCleanup(_ context.Context, st *State) error {
	if err := st.Workspace.Cleanup(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove scratch directory").
			Fatal().
			WithContext("path", st.Workspace.Path()).
			Build()
	}
	st.Report.ScratchRemoved = !st.Config.Workspace.Keep
	return nil
}
