package testutil

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/devkit-labs/devkit/internal/platform"
)

// Handler produces the result for one scripted command.
type Handler func(cmd platform.Command) (platform.Result, error)

// FakeRunner is a scripted platform.Runner. Executables "exist" only after
// Install; commands answer from handlers registered with On (exact command
// line) or OnName (any args). Unscripted commands succeed with no output.
type FakeRunner struct {
	mu       sync.Mutex
	paths    map[string]string
	byLine   map[string]Handler
	byName   map[string]Handler
	calls    []platform.Command
	lookedUp []string
}

// NewFakeRunner returns an empty FakeRunner: nothing on PATH, nothing scripted.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		paths:  make(map[string]string),
		byLine: make(map[string]Handler),
		byName: make(map[string]Handler),
	}
}

// Install puts names on the fake PATH.
func (f *FakeRunner) Install(names ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.paths[n] = "/fake/bin/" + n
	}
	return f
}

// Remove takes name off the fake PATH.
func (f *FakeRunner) Remove(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.paths, name)
}

// On scripts the exact command line, e.g. "brew install widget".
func (f *FakeRunner) On(line string, h Handler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byLine[line] = h
	return f
}

// OnName scripts every invocation of program name.
func (f *FakeRunner) OnName(name string, h Handler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byName[name] = h
	return f
}

// LookPath implements platform.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookedUp = append(f.lookedUp, name)
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Run implements platform.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd platform.Command) (platform.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	h, ok := f.byLine[cmd.String()]
	if !ok {
		h, ok = f.byName[cmd.Name]
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return platform.Result{ExitCode: -1}, err
	}
	if !ok {
		return platform.Result{}, nil
	}
	res, err := h(cmd)
	if cmd.Stdout != nil && res.Stdout != "" {
		_, _ = cmd.Stdout.Write([]byte(res.Stdout))
	}
	if cmd.Stderr != nil && res.Stderr != "" {
		_, _ = cmd.Stderr.Write([]byte(res.Stderr))
	}
	return res, err
}

// Calls returns the command lines run so far, in order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}

// Commands returns the full commands run so far.
func (f *FakeRunner) Commands() []platform.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platform.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Ran reports whether line was run.
func (f *FakeRunner) Ran(line string) bool {
	for _, c := range f.Calls() {
		if c == line {
			return true
		}
	}
	return false
}

// RanProgram reports whether any command invoked program name.
func (f *FakeRunner) RanProgram(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Output returns a Handler that succeeds printing stdout.
func Output(stdout string) Handler {
	return func(platform.Command) (platform.Result, error) {
		return platform.Result{Stdout: stdout}, nil
	}
}

// Fail returns a Handler that exits with code and stderr.
func Fail(code int, stderr string) Handler {
	return func(cmd platform.Command) (platform.Result, error) {
		return platform.Result{Stderr: stderr, ExitCode: code},
			&platform.ExitError{Command: cmd.String(), ExitCode: code, Stderr: stderr}
	}
}

// Sequence returns a Handler that answers with hs in turn, repeating the
// last one once exhausted.
func Sequence(hs ...Handler) Handler {
	var mu sync.Mutex
	i := 0
	return func(cmd platform.Command) (platform.Result, error) {
		mu.Lock()
		h := hs[i]
		if i < len(hs)-1 {
			i++
		}
		mu.Unlock()
		return h(cmd)
	}
}

// VersionSwitch returns a Handler that prints the value current points at,
// so tests can change a tool's reported version mid-run.
func VersionSwitch(current *string) Handler {
	return func(platform.Command) (platform.Result, error) {
		if strings.TrimSpace(*current) == "" {
			return platform.Result{}, nil
		}
		return platform.Result{Stdout: *current + "\n"}, nil
	}
}
