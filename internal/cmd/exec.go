package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/twig-dev/twig/internal/log"
)

// RunContext executes a command with context support and verbose logging.
// If dir is non-empty the command runs in that directory.
// Returns stderr in the error message if the command fails.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	var stderr bytes.Buffer
	c.Stderr = &stderr

	err := c.Run()
	return wrapError(ctx, err, &stderr)
}

// OutputContext executes a command with context support and verbose logging,
// returning stdout. Returns stderr in the error message if the command fails.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	var stderr bytes.Buffer
	c.Stderr = &stderr

	out, err := c.Output()
	if err := wrapError(ctx, err, &stderr); err != nil {
		return nil, err
	}
	return out, nil
}

// OutputEnvContext is OutputContext with extra environment variables,
// each in "KEY=VALUE" form, appended to the inherited environment.
func OutputEnvContext(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}
	var stderr bytes.Buffer
	c.Stderr = &stderr

	out, err := c.Output()
	if err := wrapError(ctx, err, &stderr); err != nil {
		return nil, err
	}
	return out, nil
}

// wrapError prefers the context error over the raw exec error so callers can
// distinguish cancellation and timeout from command failure, and surfaces
// stderr text when the command itself failed.
func wrapError(ctx context.Context, err error, stderr *bytes.Buffer) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	msg := strings.TrimSpace(stderr.String())
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Stderr: msg}
	}
	if msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return err
}

// ExitError reports a command that ran but exited non-zero. It keeps the
// exit code so callers can distinguish expected statuses (e.g. git
// merge-tree exiting 1 on conflicts) from real failures.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the exit code carried by err, or -1 if err does not
// come from a command that exited.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// IsTimeout reports whether err represents a context deadline expiry.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
