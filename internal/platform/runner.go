package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is wrapped by Run when a command exceeds its timeout.
var ErrTimeout = errors.New("command timed out")

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Stdin, when set, is fed to the process.
	Stdin io.Reader
	// Stdout and Stderr, when set, receive output as it is produced. Output
	// is captured into Result either way.
	Stdout io.Writer
	Stderr io.Writer
	// Timeout bounds the run. Zero means no bound beyond ctx.
	Timeout time.Duration
}

// String renders the command line for logs and dry-run output.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result captures a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError reports a process that ran but exited nonzero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

// Runner runs external programs. Tests substitute a scripted fake.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands on the local host with os/exec.
type ExecRunner struct{}

// LookPath searches PATH for name.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes c and waits for it. A nonzero exit returns *ExitError; a
// timeout returns an error wrapping ErrTimeout. Start failures (missing
// binary) report exit code 127.
func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = c.Stdin
	// Let a killed process release its pipes promptly.
	cmd.WaitDelay = time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = teeWriter(c.Stdout, &stdoutBuf)
	cmd.Stderr = teeWriter(c.Stderr, &stderrBuf)

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	if c.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.ExitCode = -1
		return res, fmt.Errorf("%s: %w after %s", c, ErrTimeout, c.Timeout)
	}
	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("%s: %w", c, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{Command: c.String(), ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	res.ExitCode = 127
	return res, fmt.Errorf("running %s: %w", c, err)
}

func teeWriter(stream io.Writer, buf *bytes.Buffer) io.Writer {
	if stream == nil {
		return buf
	}
	return io.MultiWriter(stream, buf)
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
