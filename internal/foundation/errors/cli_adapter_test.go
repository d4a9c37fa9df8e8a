package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "auth", err: NewError(CategoryAuth, "unauthorized").Build(), expected: 5},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "git", err: GitError("clone failed").Build(), expected: 8},
		{name: "build", err: BuildError("forc failed").Build(), expected: 11},
		{name: "filesystem", err: FileSystemError("missing dir").Build(), expected: 11},
		{name: "canceled", err: CanceledError("interrupted").Build(), expected: 130},
		{name: "wrapped build", err: fmt.Errorf("stage: %w", BuildError("x").Build()), expected: 11},
		{name: "unclassified", err: stderrors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	cause := stderrors.New("exit status 1")
	err := WrapError(cause, CategoryBuild, "forc build failed").Build()

	quiet := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, "Error (build): forc build failed: exit status 1", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, nil)
	assert.Equal(t, err.Error(), verbose.FormatError(err))

	assert.Equal(t, "Error: plain", quiet.FormatError(stderrors.New("plain")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger).WithOutput(&out)

	code := adapter.Report(GitError("clone failed").WithContext("repository", "core").Build())

	assert.Equal(t, 8, code)
	assert.Contains(t, out.String(), "Error (git): clone failed")
	assert.Contains(t, logs.String(), "category=git")
	assert.Contains(t, logs.String(), "repository=core")
	assert.Equal(t, 0, adapter.Report(nil))
}
