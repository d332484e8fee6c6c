package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/rs/zerolog"
)

// ErrUnavailable means no supported package manager was found on the host.
var ErrUnavailable = errors.New("no supported package manager available")

// Op is a package operation.
type Op int

const (
	OpInstall Op = iota
	OpUpgrade
)

func (o Op) String() string {
	if o == OpUpgrade {
		return "upgrade"
	}
	return "install"
}

// Backend is one host package manager.
type Backend interface {
	// Kind identifies the manager.
	Kind() manifest.Backend
	// Marker is the executable whose presence on PATH means the manager is usable.
	Marker() string
	// Plan returns the commands op would run for pkg, without running them.
	Plan(op Op, pkg string) []platform.Command
	// Install installs pkg.
	Install(ctx context.Context, pkg string) error
	// Upgrade upgrades pkg to the newest version the manager offers. Most
	// managers exit 0 when pkg is already current.
	Upgrade(ctx context.Context, pkg string) error
}

// Options configures every backend built by New.
type Options struct {
	Runner platform.Runner
	// Timeout bounds each command.
	Timeout time.Duration
	// Stdout and Stderr receive live command output.
	Stdout io.Writer
	Stderr io.Writer
	// Sudo prefixes commands of system managers with sudo.
	Sudo   bool
	Logger zerolog.Logger
}

// New returns the Backend for kind. BackendNone (or an unknown kind)
// returns ErrUnavailable.
func New(kind manifest.Backend, opts Options) (Backend, error) {
	if opts.Runner == nil {
		opts.Runner = platform.ExecRunner{}
	}
	e := &executor{opts: opts}
	switch kind {
	case manifest.BackendBrew:
		return &Brew{e}, nil
	case manifest.BackendApt:
		return &Apt{executor: e}, nil
	case manifest.BackendDnf:
		return &Dnf{executor: e, bin: "dnf", kind: manifest.BackendDnf}, nil
	case manifest.BackendYum:
		return &Dnf{executor: e, bin: "yum", kind: manifest.BackendYum}, nil
	case manifest.BackendPacman:
		return &Pacman{e}, nil
	case manifest.BackendZypper:
		return &Zypper{e}, nil
	default:
		return nil, fmt.Errorf("%w (resolved %q)", ErrUnavailable, kind)
	}
}

// executor runs planned commands with the shared options.
type executor struct {
	opts Options
}

func (e *executor) command(privileged bool, name string, args ...string) platform.Command {
	if privileged && e.opts.Sudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}
	return platform.Command{
		Name:    name,
		Args:    args,
		Stdout:  e.opts.Stdout,
		Stderr:  e.opts.Stderr,
		Timeout: e.opts.Timeout,
	}
}

func (e *executor) run(ctx context.Context, cmds []platform.Command) error {
	for _, c := range cmds {
		e.opts.Logger.Debug().Str("cmd", c.String()).Msg("running package manager")
		res, err := e.opts.Runner.Run(ctx, c)
		if err != nil {
			return err
		}
		e.opts.Logger.Debug().Str("cmd", c.String()).Dur("took", res.Duration).Msg("package manager finished")
	}
	return nil
}
