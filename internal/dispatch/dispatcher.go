package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/devkit-labs/devkit/internal/backend"
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultTimeout bounds each install or update command when no timeout is set.
const DefaultTimeout = 30 * time.Minute

var (
	// ErrChainExhausted means every applicable install chain entry failed.
	ErrChainExhausted = errors.New("all install methods failed")
	// ErrNoMethod means no chain entry applies to this host.
	ErrNoMethod = errors.New("no install method applies to this host")
	// ErrUnknownRoutine means the update routine name has no implementation.
	ErrUnknownRoutine = errors.New("unknown update routine")
)

// Dispatcher performs installs and updates for single tools. It never
// prompts; confirmation is the caller's concern.
type Dispatcher struct {
	runner     platform.Runner
	prober     *probe.Prober
	httpClient *http.Client
	timeout    time.Duration
	sudo       bool
	dryRun     bool
	stdout     io.Writer
	stderr     io.Writer
	log        zerolog.Logger
	tracer     trace.Tracer

	mu       sync.Mutex
	backends map[manifest.Backend]backend.Backend
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProber sets the prober used before and after each action.
func WithProber(p *probe.Prober) Option {
	return func(d *Dispatcher) {
		d.prober = p
	}
}

// WithHTTPClient sets the client used to fetch remote install scripts.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = c
	}
}

// WithTimeout bounds each external command.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithSudo prefixes system package manager commands with sudo.
func WithSudo(sudo bool) Option {
	return func(d *Dispatcher) {
		d.sudo = sudo
	}
}

// WithDryRun prints what would run instead of running it.
func WithDryRun(dryRun bool) Option {
	return func(d *Dispatcher) {
		d.dryRun = dryRun
	}
}

// WithOutput sets where live command output and dry-run lines go.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(d *Dispatcher) {
		d.stdout = stdout
		d.stderr = stderr
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithTracer sets the tracer for install and update spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// New returns a Dispatcher running commands through runner.
func New(runner platform.Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:     runner,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		stdout:     io.Discard,
		stderr:     io.Discard,
		log:        zerolog.Nop(),
		tracer:     noop.NewTracerProvider().Tracer(""),
		backends:   make(map[manifest.Backend]backend.Backend),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.prober == nil {
		d.prober = probe.New(runner, probe.WithLogger(d.log))
	}
	return d
}

// Probe observes the current state of desc.
func (d *Dispatcher) Probe(ctx context.Context, desc manifest.ToolDescriptor) probe.ToolState {
	return d.prober.Probe(ctx, desc)
}

// backendFor returns the shared Backend for kind, building it on first use
// so per-run state (apt's index refresh) is kept across tools.
func (d *Dispatcher) backendFor(kind manifest.Backend) (backend.Backend, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.backends[kind]; ok {
		return b, nil
	}
	b, err := backend.New(kind, backend.Options{
		Runner:  d.runner,
		Timeout: d.timeout,
		Stdout:  d.stdout,
		Stderr:  d.stderr,
		Sudo:    d.sudo,
		Logger:  d.log,
	})
	if err != nil {
		return nil, err
	}
	d.backends[kind] = b
	return b, nil
}

// step is one unit of work with a printable form for dry runs.
type step struct {
	label string
	run   func(ctx context.Context) error
}

func (d *Dispatcher) command(name string, args ...string) platform.Command {
	return platform.Command{
		Name:    name,
		Args:    args,
		Stdout:  d.stdout,
		Stderr:  d.stderr,
		Timeout: d.timeout,
	}
}

// commandStep wraps a plain command.
func (d *Dispatcher) commandStep(name string, args ...string) step {
	c := d.command(name, args...)
	return step{
		label: c.String(),
		run: func(ctx context.Context) error {
			_, err := d.runner.Run(ctx, c)
			return err
		},
	}
}

// backendStep wraps a backend operation; the label shows its planned commands.
func backendStep(b backend.Backend, op backend.Op, pkg string) step {
	var labels []string
	for _, c := range b.Plan(op, pkg) {
		labels = append(labels, c.String())
	}
	run := b.Install
	if op == backend.OpUpgrade {
		run = b.Upgrade
	}
	return step{
		label: strings.Join(labels, " && "),
		run:   func(ctx context.Context) error { return run(ctx, pkg) },
	}
}

// execute runs steps in order, stopping at the first failure. In dry-run
// mode it prints each label instead and returns the joined labels.
func (d *Dispatcher) execute(ctx context.Context, steps []step) (string, error) {
	labels := make([]string, len(steps))
	for i, s := range steps {
		labels[i] = s.label
	}
	if d.dryRun {
		for _, l := range labels {
			fmt.Fprintf(d.stdout, "[dry-run] would run: %s\n", l)
		}
		return strings.Join(labels, " && "), nil
	}
	for _, s := range steps {
		d.log.Info().Str("cmd", s.label).Msg("running")
		if err := s.run(ctx); err != nil {
			return "", err
		}
	}
	return "", nil
}

// driverAvailable reports whether a command driver can run on this host.
func (d *Dispatcher) driverAvailable(drv manifest.Driver) bool {
	_, err := d.runner.LookPath(drv.Executable())
	return err == nil
}
