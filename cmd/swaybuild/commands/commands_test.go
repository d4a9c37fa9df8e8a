package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Bind(&cli), kong.Exit(func(int) { t.Fatalf("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	var out bytes.Buffer
	err = kctx.Run(&Global{Ctx: t.Context(), Out: &out})
	return out.String(), err
}

// localRepo commits files into a fresh repository and returns its path.
func localRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upstream")
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func writeConfig(t *testing.T, repoURL string) (cfgPath, scratch, outRoot string) {
	t.Helper()
	base := t.TempDir()
	scratch = filepath.Join(base, "tmp")
	outRoot = filepath.Join(base, "sway_abi")
	cfgPath = filepath.Join(base, "swaybuild.yaml")
	content := fmt.Sprintf(`workspace:
  dir: %s
output:
  root: %s
build:
  command: forc
  args: [build, --release]
repositories:
  - name: core
    url: %s
artifacts:
  - name: mira_amm_contract
    repository: core
    source: contracts/mira_amm_contract/out
`, scratch, outRoot, repoURL)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath, scratch, outRoot
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "warn")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(false))
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))
	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
}

func TestPlan_BuiltInPlanWhenConfigMissing(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "plan")
	require.NoError(t, err)
	assert.Contains(t, out, "git clone https://github.com/mira-amm/mira-v1-periphery.git tmp/mira-v1-periphery")
	assert.Contains(t, out, "mv tmp/mira-v1-periphery/scripts/swap_exact_output_script/out packages/mira-v1/sway_abi/swap_exact_output_script/out")
	assert.True(t, strings.HasSuffix(out, "rm -rf tmp\n"))
}

func TestBuild_DryRunHasNoSideEffects(t *testing.T) {
	cfgPath, scratch, outRoot := writeConfig(t, "https://example.invalid/core.git")

	out, err := execute(t, "--config", cfgPath, "build", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "# clone\ngit clone https://example.invalid/core.git")
	assert.NoDirExists(t, scratch)
	assert.NoDirExists(t, outRoot)
}

func TestBuild_SkipBuildWithReportAndMetrics(t *testing.T) {
	repo := localRepo(t, map[string]string{
		"contracts/mira_amm_contract/out/release/mira_amm_contract-abi.json": `{"programType":"contract"}`,
	})
	cfgPath, scratch, outRoot := writeConfig(t, repo)
	reportPath := filepath.Join(t.TempDir(), "report.json")
	metricsPath := filepath.Join(t.TempDir(), "swaybuild.prom")

	out, err := execute(t, "--config", cfgPath, "build", "--skip-build",
		"--report", reportPath, "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Build complete: 1 artifacts")

	assert.FileExists(t, filepath.Join(outRoot, "mira_amm_contract", "out", "release", "mira_amm_contract-abi.json"))
	assert.NoDirExists(t, scratch)

	var report struct {
		Outcome      string `json:"outcome"`
		SkippedBuild bool   `json:"skipped_build"`
		Artifacts    []struct {
			Name string `json:"name"`
		} `json:"artifacts"`
	}
	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &report))
	assert.Equal(t, "success", report.Outcome)
	assert.True(t, report.SkippedBuild)
	require.Len(t, report.Artifacts, 1)
	assert.Equal(t, "mira_amm_contract", report.Artifacts[0].Name)

	m, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(m), `swaybuild_artifacts_relocated_total{artifact="mira_amm_contract"} 1`)
	assert.Contains(t, string(m), "swaybuild_last_run_success 1")
}

func TestBuild_CloneFailureWritesFailedReport(t *testing.T) {
	cfgPath, scratch, outRoot := writeConfig(t, filepath.Join(t.TempDir(), "missing-repo"))
	reportPath := filepath.Join(t.TempDir(), "report.json")

	_, err := execute(t, "--config", cfgPath, "build", "--skip-build", "--report", reportPath)
	require.Error(t, err)
	assert.NotEqual(t, 0, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))

	b, readErr := os.ReadFile(reportPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(b), `"outcome": "failed"`)
	assert.Contains(t, string(b), `"failed_stage": "clone"`)
	assert.NoDirExists(t, outRoot)
	assert.DirExists(t, scratch)
}

func TestBuild_MissingBuildTool(t *testing.T) {
	repo := localRepo(t, map[string]string{"Forc.toml": "[workspace]\n"})
	cfgPath, _, outRoot := writeConfig(t, repo)
	require.NoError(t, os.WriteFile(cfgPath, bytes.Replace(mustRead(t, cfgPath),
		[]byte("command: forc"), []byte("command: swaybuild-no-such-tool"), 1), 0o600))

	_, err := execute(t, "--config", cfgPath, "build")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
	assert.Equal(t, 11, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.NoDirExists(t, outRoot)
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swaybuild.yaml")

	out, err := execute(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration")
	assert.Contains(t, string(mustRead(t, path)), "mira-v1-core")

	_, err = execute(t, "--config", path, "init")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}
