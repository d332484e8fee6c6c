package platform

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunner_Success(t *testing.T) {
	skipWithoutShell(t)
	var stream bytes.Buffer
	res, err := ExecRunner{}.Run(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "echo widget 2.1.0; echo note >&2"},
		Stdout: &stream,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "widget 2.1.0\n" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if res.Stderr != "note\n" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
	if stream.String() != res.Stdout {
		t.Errorf("streamed %q, captured %q", stream.String(), res.Stdout)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	skipWithoutShell(t)
	res, err := ExecRunner{}.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo 'E: Unable to locate package widget' >&2; exit 100"},
	})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run error = %v, want *ExitError", err)
	}
	if res.ExitCode != 100 || exitErr.ExitCode != 100 {
		t.Errorf("ExitCode = %d/%d, want 100", res.ExitCode, exitErr.ExitCode)
	}
	if !strings.Contains(err.Error(), "Unable to locate package widget") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	skipWithoutShell(t)
	start := time.Now()
	_, err := ExecRunner{}.Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"5"},
		Timeout: 100 * time.Millisecond,
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run error = %v, want ErrTimeout", err)
	}
	if !strings.Contains(err.Error(), "100ms") {
		t.Errorf("error %q does not name the timeout", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout did not stop the process promptly")
	}
}

func TestExecRunner_Cancelled(t *testing.T) {
	skipWithoutShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecRunner{}.Run(ctx, Command{Name: "sleep", Args: []string{"5"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-xyz"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if res.ExitCode != 127 {
		t.Errorf("ExitCode = %d, want 127", res.ExitCode)
	}
}

func TestExecRunner_Stdin(t *testing.T) {
	skipWithoutShell(t)
	res, err := ExecRunner{}.Run(context.Background(), Command{
		Name:  "sh",
		Stdin: strings.NewReader("echo from-stdin\n"),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "from-stdin" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "from-stdin")
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"git version 2.43.0\n", "git version 2.43.0"},
		{"\n\n  tmux 3.4  \nmore", "tmux 3.4"},
		{"", ""},
		{"   \n", ""},
	}
	for _, tt := range tests {
		if got := FirstLine(tt.in); got != tt.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "brew", Args: []string{"install", "git"}}
	if got := c.String(); got != "brew install git" {
		t.Errorf("String() = %q", got)
	}
	if got := (Command{Name: "brew"}).String(); got != "brew" {
		t.Errorf("String() = %q", got)
	}
}
