package dispatch

import (
	"context"
	"fmt"

	"github.com/devkit-labs/devkit/internal/backend"
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/devkit-labs/devkit/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Update runs desc's update strategy and classifies the result by
// re-probing: the same version afterwards is Unchanged even though the
// command succeeded, a different known version is Updated, and a failing
// command is Failed. prior is the state observed before the update.
func (d *Dispatcher) Update(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend, prior probe.ToolState) probe.ActionResult {
	ctx, span := d.tracer.Start(ctx, "update "+desc.Name, trace.WithAttributes(
		telemetry.AttrTool.String(desc.Name),
		telemetry.AttrBackend.String(string(kind)),
		telemetry.AttrVersion.String(prior.Version),
	))
	res := d.update(ctx, desc, kind, prior)
	span.SetAttributes(telemetry.AttrStatus.String(string(res.Status)))
	telemetry.EndSpan(span, res.Err)
	return res
}

func (d *Dispatcher) update(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend, prior probe.ToolState) probe.ActionResult {
	before := prior.Version
	if !prior.Installed {
		return probe.ActionResult{Status: probe.StatusSkipped, Message: "not installed"}
	}

	var steps []step
	switch desc.Update.Kind {
	case manifest.UpdateChain:
		return d.runChain(ctx, desc, kind, backend.OpUpgrade, before)
	case manifest.UpdateRoutine:
		s, err := d.routineSteps(desc)
		if err != nil {
			return failed(before, err)
		}
		steps = s
	default:
		pkg, ok := desc.PackageFor(kind)
		if !ok {
			return d.noUpgradePath(desc, kind, before)
		}
		b, err := d.backendFor(kind)
		if err != nil {
			return failed(before, err)
		}
		steps = []step{backendStep(b, backend.OpUpgrade, pkg)}
	}

	plan, err := d.execute(ctx, steps)
	if err != nil {
		return failed(before, err)
	}
	if d.dryRun {
		return probe.ActionResult{Status: probe.StatusSkipped, Before: before, Message: "dry run: " + plan}
	}

	after := d.prober.Probe(ctx, desc)
	if !after.Installed {
		return failed(before, fmt.Errorf("%s is no longer on PATH after update", desc.Binary))
	}
	return classifyUpdate(before, after.Version)
}

// noUpgradePath handles a backend update for a tool with no package on the
// resolved backend, typically because it was installed by other means.
func (d *Dispatcher) noUpgradePath(desc manifest.ToolDescriptor, kind manifest.Backend, before string) probe.ActionResult {
	if url, ok := desc.ManualURL(); ok {
		return probe.ActionResult{
			Status:  probe.StatusSkipped,
			Before:  before,
			After:   before,
			Message: fmt.Sprintf("no %s package; update manually: %s", kind, url),
		}
	}
	if kind == manifest.BackendNone {
		return failed(before, fmt.Errorf("%w to update %s", backend.ErrUnavailable, desc.Name))
	}
	return failed(before, fmt.Errorf("%w: %s has no %s package", ErrNoMethod, desc.Name, kind))
}

// classifyUpdate compares versions observed before and after an update
// whose commands all succeeded.
func classifyUpdate(before, after string) probe.ActionResult {
	res := probe.ActionResult{Before: before, After: after}
	switch {
	case after == before:
		res.Status = probe.StatusUnchanged
		if after == "" {
			res.Message = "version unknown"
		}
	case after == "":
		res.Status = probe.StatusUnchanged
		res.Message = "version unknown after update"
	default:
		res.Status = probe.StatusUpdated
	}
	return res
}
