package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/swaybuild/internal/config"
	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
)

// initRemote creates a local repository with a single committed file and
// returns its path and the commit hash.
func initRemote(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote")
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	for name := range files {
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestClone_LocalRepository(t *testing.T) {
	remote, commit := initRemote(t, map[string]string{"Forc.toml": "[workspace]\n"})
	ws := t.TempDir()

	res, err := NewClient(ws).Clone(context.Background(), config.Repository{Name: "core", URL: remote})
	require.NoError(t, err)

	assert.Equal(t, "core", res.Name)
	assert.Equal(t, filepath.Join(ws, "core"), res.Path)
	assert.Equal(t, commit, res.Commit)
	assert.FileExists(t, filepath.Join(res.Path, "Forc.toml"))
}

func TestClone_ReplacesExistingCheckout(t *testing.T) {
	remote, _ := initRemote(t, map[string]string{"a.txt": "a"})
	ws := t.TempDir()
	stale := filepath.Join(ws, "core", "stale.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o750))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))

	_, err := NewClient(ws).Clone(context.Background(), config.Repository{Name: "core", URL: remote})
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestClone_Branch(t *testing.T) {
	remote, _ := initRemote(t, map[string]string{"a.txt": "a"})
	r, err := git.PlainOpen(remote)
	require.NoError(t, err)
	head, err := r.Head()
	require.NoError(t, err)
	require.NoError(t, r.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("release"), head.Hash())))

	res, err := NewClient(t.TempDir()).Clone(context.Background(), config.Repository{Name: "core", URL: remote, Branch: "release"})
	require.NoError(t, err)
	assert.Equal(t, "release", res.Branch)
}

func TestClone_MissingRepositoryIsPermanent(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := NewClient(t.TempDir()).Clone(context.Background(), config.Repository{Name: "core", URL: missing})
	require.Error(t, err)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok, "expected classified error, got %T", err)
	repo, _ := classified.Context().GetString("repository")
	assert.Equal(t, "core", repo)
	assert.False(t, classified.CanRetry())
}
