// Package process runs short-lived subprocesses (the whisper.cpp CLI
// in particular) with captured output and two-stage termination:
// SIGTERM on context cancellation, SIGKILL after the grace period.
package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// Command describes one subprocess invocation.
type Command struct {
	// Binary names the executable, resolved via PATH when relative.
	Binary string
	// Args are passed verbatim.
	Args []string
	// Dir overrides the working directory when non-empty.
	Dir string
	// Env entries (key=value) are appended to the parent environment.
	// Nil inherits the parent environment as-is.
	Env []string
	// Stdin feeds the process when non-nil.
	Stdin io.Reader
	// Timeout bounds the run beyond the caller's context. Zero means
	// only the caller's context limits it.
	Timeout time.Duration
	// GracePeriod is the SIGTERM-to-SIGKILL window. Zero means five
	// seconds.
	GracePeriod time.Duration
}

// Result is what a finished (or killed) subprocess left behind.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 when the process died to a signal.
	ExitCode int
	Duration time.Duration
}

// Run starts cmd and waits for it. On context cancellation the whole
// process group gets SIGTERM, then SIGKILL once the grace period
// elapses. The Result is returned even on error so callers can log
// captured stderr.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c, out, errOut := build(ctx, cmd)

	start := time.Now()
	runErr := c.Run()
	res := &Result{
		Stdout:   out.Bytes(),
		Stderr:   errOut.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case runErr == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("process: killed by context: %w", ctx.Err())
	default:
		return res, fmt.Errorf("process: exit code %d: %w", res.ExitCode, runErr)
	}
}

func build(ctx context.Context, cmd Command) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer) {
	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // running caller-supplied binaries is this package's job
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin

	var out, errOut bytes.Buffer
	c.Stdout = &out
	c.Stderr = &errOut

	// Own process group: whisper.cpp may fork, and the ffmpeg children
	// must die with it.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = cmd.GracePeriod
	if c.WaitDelay == 0 {
		c.WaitDelay = defaultGracePeriod
	}

	return c, &out, &errOut
}
