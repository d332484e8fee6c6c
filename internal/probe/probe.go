package probe

import (
	"context"
	"errors"
	"time"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/devkit-labs/devkit/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultTimeout bounds a version command when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Prober observes whether tools are installed and which version they report.
type Prober struct {
	runner  platform.Runner
	timeout time.Duration
	log     zerolog.Logger
	tracer  trace.Tracer
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout bounds each version command.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Prober) {
		p.log = l
	}
}

// WithTracer sets the tracer for per-probe spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Prober) {
		p.tracer = t
	}
}

// New returns a Prober that runs commands through runner.
func New(runner platform.Runner, opts ...Option) *Prober {
	p := &Prober{
		runner:  runner,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
		tracer:  noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe looks d's binary up on PATH and, only if found, runs its version
// command. A present binary whose version command fails or prints nothing
// is reported installed with an unknown version.
func (p *Prober) Probe(ctx context.Context, d manifest.ToolDescriptor) ToolState {
	ctx, span := p.tracer.Start(ctx, "probe "+d.Name, trace.WithAttributes(telemetry.AttrTool.String(d.Name)))
	defer span.End()

	state := ToolState{Descriptor: d}
	path, err := p.runner.LookPath(d.Binary)
	if err != nil {
		p.log.Debug().Str("tool", d.Name).Str("binary", d.Binary).Msg("not on PATH")
		return state
	}
	state.Installed = true
	state.Path = path

	res, err := p.runner.Run(ctx, platform.Command{
		Name:    d.Binary,
		Args:    d.Probe.Args,
		Timeout: p.timeout,
	})
	if err != nil {
		ev := p.log.Warn()
		if errors.Is(err, platform.ErrTimeout) {
			ev = ev.Dur("timeout", p.timeout)
		}
		ev.Str("tool", d.Name).Err(err).Msg("version probe failed, version unknown")
		span.RecordError(err)
		return state
	}

	line := platform.FirstLine(res.Stdout)
	if line == "" {
		line = platform.FirstLine(res.Stderr)
	}
	if line == "" {
		p.log.Warn().Str("tool", d.Name).Msg("version probe printed nothing, version unknown")
		return state
	}

	state.Output = line
	state.Version = ExtractVersion(line)
	span.SetAttributes(telemetry.AttrVersion.String(state.Version))
	return state
}

// ProbeAll probes ds one at a time, in order. It stops early, returning
// what it has, if ctx is cancelled.
func (p *Prober) ProbeAll(ctx context.Context, ds []manifest.ToolDescriptor) []ToolState {
	states := make([]ToolState, 0, len(ds))
	for _, d := range ds {
		if ctx.Err() != nil {
			break
		}
		states = append(states, p.Probe(ctx, d))
	}
	return states
}
