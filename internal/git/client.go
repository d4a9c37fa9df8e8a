package git

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/swaybuild/internal/config"
	"git.home.luguber.info/inful/swaybuild/internal/logfields"
	"git.home.luguber.info/inful/swaybuild/internal/retry"
)

// CloneResult describes a finished checkout.
type CloneResult struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Client handles Git operations
type Client struct {
	workspaceDir string
	policy       retry.Policy
	progress     io.Writer
}

// NewClient creates a new Git client that checks out into workspaceDir.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir, policy: retry.DefaultPolicy()}
}

// WithRetryPolicy enables retries of transient clone failures (fluent helper).
func (c *Client) WithRetryPolicy(p retry.Policy) *Client { c.policy = p; return c }

// WithProgress streams go-git progress output (fluent helper).
func (c *Client) WithProgress(w io.Writer) *Client { c.progress = w; return c }

// Clone clones repo into <workspace>/<repo.Name>, retrying transient failures per policy.
func (c *Client) Clone(ctx context.Context, repo config.Repository) (CloneResult, error) {
	var res CloneResult
	err := c.policy.Do(ctx, isPermanent,
		func(attempt int, lastErr error) {
			slog.Warn("Retrying clone", logfields.Repository(repo.Name), logfields.Attempt(attempt), logfields.Error(lastErr))
		},
		func() error {
			var err error
			res, err = c.cloneOnce(ctx, repo)
			return err
		})
	if err != nil {
		return CloneResult{}, Classify(err, repo.Name, repo.URL)
	}
	return res, nil
}

func (c *Client) cloneOnce(ctx context.Context, repo config.Repository) (CloneResult, error) {
	repoPath := filepath.Join(c.workspaceDir, repo.Name)
	slog.Debug("Cloning repository", logfields.URL(repo.URL), logfields.Name(repo.Name), slog.String("branch", repo.Branch), logfields.Path(repoPath))
	if err := os.RemoveAll(repoPath); err != nil {
		return CloneResult{}, fmt.Errorf("failed to remove existing directory: %w", err)
	}

	cloneOptions := &git.CloneOptions{URL: repo.URL, Progress: c.progress}
	if repo.Branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		cloneOptions.SingleBranch = true
	}
	if repo.Depth > 0 {
		cloneOptions.Depth = repo.Depth
	}
	auth, err := authMethod(repo.Auth)
	if err != nil {
		return CloneResult{}, &AuthError{Op: "clone", URL: repo.URL, Err: err}
	}
	cloneOptions.Auth = auth

	repository, err := git.PlainCloneContext(ctx, repoPath, false, cloneOptions)
	if err != nil {
		return CloneResult{}, classifyCloneError(repo.URL, err)
	}

	res := CloneResult{Name: repo.Name, Path: repoPath}
	if ref, herr := repository.Head(); herr == nil {
		res.Commit = ref.Hash().String()
		if ref.Name().IsBranch() {
			res.Branch = ref.Name().Short()
		}
		slog.Info("Repository cloned successfully", logfields.Name(repo.Name), logfields.URL(repo.URL), logfields.Commit(res.Commit[:8]), logfields.Path(repoPath))
	} else {
		slog.Info("Repository cloned successfully", logfields.Name(repo.Name), logfields.URL(repo.URL), logfields.Path(repoPath))
	}
	return res, nil
}
