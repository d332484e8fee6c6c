package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/devkit-labs/devkit/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Dispatcher probes, installs and updates single tools.
type Dispatcher interface {
	Probe(ctx context.Context, desc manifest.ToolDescriptor) probe.ToolState
	Install(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend) probe.ActionResult
	Update(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend, prior probe.ToolState) probe.ActionResult
}

// Orchestrator runs installs and updates across tools sequentially.
type Orchestrator struct {
	dispatcher Dispatcher
	confirmer  Confirmer
	progress   func(Outcome)
	log        zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfirmer sets how Interactive runs ask the user.
func WithConfirmer(c Confirmer) Option {
	return func(o *Orchestrator) {
		o.confirmer = c
	}
}

// WithProgress registers fn to be called after each tool is processed.
func WithProgress(fn func(Outcome)) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithTracer sets the tracer for batch and per-tool spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// New returns an Orchestrator driving d. Without WithConfirmer, questions
// are asked on stdout and answered on stdin.
func New(d Dispatcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		dispatcher: d,
		progress:   func(Outcome) {},
		log:        zerolog.Nop(),
		tracer:     noop.NewTracerProvider().Tracer(""),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.confirmer == nil {
		o.confirmer = NewPromptConfirmer(os.Stdin, os.Stdout)
	}
	return o
}

// RunUpdateAll processes every tool in m.
func (o *Orchestrator) RunUpdateAll(ctx context.Context, m *manifest.Manifest, kind manifest.Backend, policy Policy) Summary {
	return o.Run(ctx, m.All(), kind, policy)
}

// Run processes descs in order: a missing tool is offered for install, an
// installed one for update. Per-tool failures are recorded and the loop
// continues. Cancelling ctx stops the run before the next tool and marks
// the summary Interrupted.
func (o *Orchestrator) Run(ctx context.Context, descs []manifest.ToolDescriptor, kind manifest.Backend, policy Policy) Summary {
	start := o.now()
	sum := Summary{RunID: uuid.NewString(), Policy: policy}
	log := o.log.With().Str("run_id", sum.RunID).Logger()

	ctx, span := o.tracer.Start(ctx, "batch.update", trace.WithAttributes(
		telemetry.AttrRunID.String(sum.RunID),
		telemetry.AttrBackend.String(string(kind)),
		attribute.String("devkit.policy", policy.String()),
		attribute.Int("devkit.tools", len(descs)),
	))

	log.Debug().Int("tools", len(descs)).Str("backend", string(kind)).Stringer("policy", policy).Msg("batch started")
	for _, desc := range descs {
		if ctx.Err() != nil {
			sum.Interrupted = true
			break
		}
		out, err := o.process(ctx, desc, kind, policy)
		if err != nil {
			log.Warn().Str("tool", desc.Name).Err(err).Msg("batch interrupted")
			sum.Interrupted = true
			break
		}
		sum.add(out)
		o.progress(out)
		if out.Result.Status == probe.StatusFailed {
			log.Warn().Str("tool", desc.Name).Str("error", out.Result.Message).Msg("tool failed, continuing")
		}
	}
	sum.Duration = o.now().Sub(start)

	span.SetAttributes(
		attribute.Int("devkit.failed", sum.Failed),
		attribute.Bool("devkit.interrupted", sum.Interrupted),
	)
	span.End()
	log.Debug().
		Int("installed", sum.Installed).
		Int("updated", sum.Updated).
		Int("unchanged", sum.Unchanged).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Dur("duration", sum.Duration).
		Msg("batch finished")
	return sum
}

// RunOne processes a single tool under policy. The error is non-nil only
// when the user's answer could not be read, typically on cancellation.
func (o *Orchestrator) RunOne(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend, policy Policy) (Outcome, error) {
	return o.process(ctx, desc, kind, policy)
}

// InstallOne installs desc when missing, asking first under Interactive.
func (o *Orchestrator) InstallOne(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend, policy Policy) (Outcome, error) {
	prior := o.dispatcher.Probe(ctx, desc)
	out := Outcome{Tool: desc.Name, Category: desc.Category, Action: ActionInstall, Prior: prior}
	if prior.Installed {
		out.Result = probe.ActionResult{
			Status:  probe.StatusUnchanged,
			Before:  prior.Version,
			After:   prior.Version,
			Message: "already installed",
		}
		return out, nil
	}
	return o.act(ctx, out, desc, kind, policy)
}

func (o *Orchestrator) process(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend, policy Policy) (Outcome, error) {
	prior := o.dispatcher.Probe(ctx, desc)
	out := Outcome{Tool: desc.Name, Category: desc.Category, Action: ActionUpdate, Prior: prior}
	if !prior.Installed {
		out.Action = ActionInstall
	}
	return o.act(ctx, out, desc, kind, policy)
}

// act confirms and performs out.Action.
func (o *Orchestrator) act(ctx context.Context, out Outcome, desc manifest.ToolDescriptor, kind manifest.Backend, policy Policy) (Outcome, error) {
	ok, err := o.confirm(ctx, policy, question(out))
	if err != nil {
		return out, err
	}
	switch {
	case !ok:
		out.Result = probe.ActionResult{Status: probe.StatusSkipped, Before: out.Prior.Version, Message: "declined"}
	case out.Action == ActionInstall:
		out.Result = o.dispatcher.Install(ctx, desc, kind)
	default:
		out.Result = o.dispatcher.Update(ctx, desc, kind, out.Prior)
	}
	return out, nil
}

// confirm never consults the confirmer unless policy prompts.
func (o *Orchestrator) confirm(ctx context.Context, policy Policy, q string) (bool, error) {
	if !policy.Prompts() {
		return true, nil
	}
	return o.confirmer.Confirm(ctx, q)
}

func question(out Outcome) string {
	if out.Action == ActionInstall {
		return fmt.Sprintf("Install %s?", out.Tool)
	}
	if out.Prior.Version != "" {
		return fmt.Sprintf("Update %s (%s)?", out.Tool, out.Prior.Version)
	}
	return fmt.Sprintf("Update %s?", out.Tool)
}
