// Package forc runs the external build tool inside a repository checkout.
package forc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/swaybuild/internal/config"
	"git.home.luguber.info/inful/swaybuild/internal/logfields"
)

// maxOutputInError bounds how much tool output is copied into a returned error.
const maxOutputInError = 4096

const waitDelay = 2 * time.Second

// Builder compiles the sources of one checkout in place.
type Builder interface {
	Build(ctx context.Context, dir string) error
}

// BinaryBuilder invokes an executable found on PATH, `forc build --release` by default.
type BinaryBuilder struct {
	Command string
	Args    []string
	Env     map[string]string
	Timeout time.Duration
}

// NewBinaryBuilder creates a builder from the build section of the configuration.
func NewBinaryBuilder(cfg config.BuildConfig) *BinaryBuilder {
	timeout, _ := time.ParseDuration(cfg.Timeout)
	return &BinaryBuilder{Command: cfg.Command, Args: cfg.Args, Env: cfg.Env, Timeout: timeout}
}

// String renders the command line as it would be typed in a shell.
func (b *BinaryBuilder) String() string {
	return strings.Join(append([]string{b.Command}, b.Args...), " ")
}

func (b *BinaryBuilder) Build(ctx context.Context, dir string) error {
	bin, err := exec.LookPath(b.Command)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrToolNotFound, err)
	}
	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		return fmt.Errorf("%w: %s", ErrCheckoutMissing, dir)
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, b.Args...)
	cmd.Dir = dir
	// Children that inherit stdout must not hold Wait open after cancellation.
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), b.envList()...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Info("Running build tool", logfields.Command(b.String()), logfields.Path(dir))
	start := time.Now()
	err = cmd.Run()

	outStr := stdout.String()
	errStr := stderr.String()
	if outStr != "" {
		slog.Debug("build tool stdout", logfields.Path(dir), slog.String("output", outStr))
	}
	if errStr != "" {
		// forc reports progress on stderr, so this is not a warning on its own.
		slog.Debug("build tool stderr", logfields.Path(dir), slog.String("error_output", errStr))
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s interrupted: %w", ErrBuildFailed, b.String(), ctxErr)
		}
		output := strings.TrimSpace(strings.Join(nonEmpty(outStr, errStr), "\n"))
		if output != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrBuildFailed, b.String(), err, tail(output, maxOutputInError))
		}
		return fmt.Errorf("%w: %s: %w", ErrBuildFailed, b.String(), err)
	}

	slog.Info("Build tool finished", logfields.Path(dir), logfields.Duration(time.Since(start)))
	return nil
}

func (b *BinaryBuilder) envList() []string {
	keys := make([]string, 0, len(b.Env))
	for k := range b.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+b.Env[k])
	}
	return out
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// NoopBuilder performs no build; used with --skip-build when outputs are already present.
type NoopBuilder struct{}

func (NoopBuilder) Build(_ context.Context, dir string) error {
	slog.Debug("NoopBuilder skipping build", logfields.Path(dir))
	return nil
}

// IsToolMissing reports whether err stems from a missing build executable.
func IsToolMissing(err error) bool { return errors.Is(err, ErrToolNotFound) }
