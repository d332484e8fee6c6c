package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devkit-labs/devkit/internal/backend"
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/devkit-labs/devkit/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Install installs desc using the first chain entry that applies to the
// resolved backend kind, falling back through later entries when one fails.
// A tool that is already present is reported Unchanged. When nothing in the
// chain applies, a manual entry turns the result into Skipped carrying its
// URL; without one the result is Failed.
func (d *Dispatcher) Install(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend) probe.ActionResult {
	ctx, span := d.tracer.Start(ctx, "install "+desc.Name, trace.WithAttributes(
		telemetry.AttrTool.String(desc.Name),
		telemetry.AttrBackend.String(string(kind)),
	))
	res := d.install(ctx, desc, kind)
	span.SetAttributes(telemetry.AttrStatus.String(string(res.Status)))
	telemetry.EndSpan(span, res.Err)
	return res
}

func (d *Dispatcher) install(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend) probe.ActionResult {
	prior := d.prober.Probe(ctx, desc)
	if prior.Installed {
		return probe.ActionResult{
			Status:  probe.StatusUnchanged,
			Before:  prior.Version,
			After:   prior.Version,
			Message: "already installed",
		}
	}
	return d.runChain(ctx, desc, kind, backend.OpInstall, "")
}

// runChain walks desc's install chain with op. before is carried into the
// result for chain-based updates.
func (d *Dispatcher) runChain(ctx context.Context, desc manifest.ToolDescriptor, kind manifest.Backend, op backend.Op, before string) probe.ActionResult {
	var failures []string
	for _, entry := range desc.Install {
		steps, ok, err := d.stepsFor(entry, kind, op)
		if !ok {
			continue
		}
		if err == nil {
			var plan string
			plan, err = d.execute(ctx, steps)
			if err == nil && d.dryRun {
				return probe.ActionResult{Status: probe.StatusSkipped, Before: before, Message: "dry run: " + plan}
			}
		}
		if err == nil {
			after := d.prober.Probe(ctx, desc)
			if after.Installed {
				return chainSuccess(op, before, after.Version, entry)
			}
			err = fmt.Errorf("finished but %s is not on PATH", desc.Binary)
		}
		if ctx.Err() != nil {
			return failed(before, fmt.Errorf("%s: %w", entry, ctx.Err()))
		}
		d.log.Warn().Str("tool", desc.Name).Str("method", entry.String()).Err(err).Msg("install method failed, trying next")
		failures = append(failures, fmt.Sprintf("%s: %v", entry, err))
	}

	url, hasManual := desc.ManualURL()
	switch {
	case len(failures) > 0:
		err := fmt.Errorf("%w: %s", ErrChainExhausted, strings.Join(failures, "; "))
		res := failed(before, err)
		if hasManual {
			res.Message += "; install manually: " + url
		}
		return res
	case hasManual:
		return probe.ActionResult{
			Status:  probe.StatusSkipped,
			Before:  before,
			Message: "manual install required: " + url,
		}
	case kind == manifest.BackendNone:
		return failed(before, fmt.Errorf("%w and %s has no manual install", backend.ErrUnavailable, desc.Name))
	default:
		return failed(before, fmt.Errorf("%w: %s has no %s package", ErrNoMethod, desc.Name, kind))
	}
}

// stepsFor reports whether entry applies to this host and, if so, the
// steps it runs.
func (d *Dispatcher) stepsFor(entry manifest.InstallStrategy, kind manifest.Backend, op backend.Op) ([]step, bool, error) {
	switch e := entry.(type) {
	case manifest.BackendInstall:
		if kind == manifest.BackendNone || e.Backend != kind {
			return nil, false, nil
		}
		b, err := d.backendFor(kind)
		if err != nil {
			return nil, true, err
		}
		return []step{backendStep(b, op, e.Package)}, true, nil
	case manifest.CommandInstall:
		if !d.driverAvailable(e.Driver) {
			return nil, false, nil
		}
		return []step{d.driverStep(e, op)}, true, nil
	default:
		return nil, false, nil
	}
}

// driverStep builds the command for a backend-agnostic installer.
func (d *Dispatcher) driverStep(e manifest.CommandInstall, op backend.Op) step {
	upgrade := op == backend.OpUpgrade
	switch e.Driver {
	case manifest.DriverGo:
		return d.commandStep("go", "install", e.Target)
	case manifest.DriverNpm:
		return d.commandStep("npm", "install", "-g", e.Target)
	case manifest.DriverCargo:
		if upgrade {
			return d.commandStep("cargo", "install", "--force", e.Target)
		}
		return d.commandStep("cargo", "install", e.Target)
	case manifest.DriverPipx:
		if upgrade {
			return d.commandStep("pipx", "upgrade", e.Target)
		}
		return d.commandStep("pipx", "install", e.Target)
	default:
		return d.scriptStep(e.Target)
	}
}

func chainSuccess(op backend.Op, before, after string, entry manifest.InstallStrategy) probe.ActionResult {
	if op == backend.OpInstall {
		return probe.ActionResult{Status: probe.StatusInstalled, After: after, Message: "via " + entry.String()}
	}
	return classifyUpdate(before, after)
}

func failed(before string, err error) probe.ActionResult {
	return probe.ActionResult{Status: probe.StatusFailed, Before: before, Message: err.Error(), Err: err}
}

// IsBackendUnavailable reports whether res failed because the host has no
// usable package manager and the tool has no manual fallback.
func IsBackendUnavailable(res probe.ActionResult) bool {
	return res.Status == probe.StatusFailed && errors.Is(res.Err, backend.ErrUnavailable)
}
