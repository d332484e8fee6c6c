package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/devkit-labs/devkit/internal/backend"
	"github.com/devkit-labs/devkit/internal/branding"
	"github.com/devkit-labs/devkit/internal/config"
	"github.com/devkit-labs/devkit/internal/dispatch"
	"github.com/devkit-labs/devkit/internal/logging"
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/orchestrator"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/devkit-labs/devkit/internal/report"
	"github.com/devkit-labs/devkit/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newRunner builds the process runner. Tests replace it with a fake.
var newRunner = func() platform.Runner { return platform.ExecRunner{} }

// app holds the collaborators one command invocation works with.
type app struct {
	cmd      *cobra.Command
	log      zerolog.Logger
	manifest *manifest.Manifest
	runner   platform.Runner
	resolver *backend.Resolver
	prober   *probe.Prober
	printer  *report.Printer
	closers  []io.Closer
}

// newApp loads the manifest and wires the runner, resolver and prober for
// cmd. A manifest that fails to load or validate is a hard error.
func newApp(cmd *cobra.Command) (*app, error) {
	level := config.LogLevel()
	if verbose {
		level = "debug"
	}
	log := logging.New(cmd.ErrOrStderr(), level, branding.CLIName())

	m, err := loadManifest()
	if err != nil {
		return nil, exitError(1, "%v", err)
	}

	runner := newRunner()
	out := cmd.OutOrStdout()
	return &app{
		cmd:      cmd,
		log:      log,
		manifest: m,
		runner:   runner,
		resolver: backend.NewResolver(runner,
			backend.WithOverride(config.Backend()),
			backend.WithResolverLogger(log),
		),
		prober: probe.New(runner,
			probe.WithTimeout(config.ProbeTimeout()),
			probe.WithLogger(log),
			probe.WithTracer(telemetry.Tracer()),
		),
		printer: report.NewPrinter(out, report.ColorEnabled(out, noColor)),
	}, nil
}

func loadManifest() (*manifest.Manifest, error) {
	if path := config.ManifestPath(); path != "" {
		return manifest.ParseFile(path)
	}
	return manifest.Default()
}

// dispatcher builds a Dispatcher. Live command output goes to stderr so
// stdout carries only results.
func (a *app) dispatcher(dryRun bool) *dispatch.Dispatcher {
	var dryOut io.Writer = a.cmd.OutOrStdout()
	if structured() {
		dryOut = a.cmd.ErrOrStderr()
	}
	return dispatch.New(a.runner,
		dispatch.WithProber(a.prober),
		dispatch.WithTimeout(config.Timeout()),
		dispatch.WithSudo(!platform.IsRoot()),
		dispatch.WithDryRun(dryRun),
		dispatch.WithOutput(dryOut, a.cmd.ErrOrStderr()),
		dispatch.WithLogger(a.log),
		dispatch.WithTracer(telemetry.Tracer()),
	)
}

// orchestrator builds an Orchestrator whose questions go to stderr.
func (a *app) orchestrator(d *dispatch.Dispatcher, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	confirmer := orchestrator.NewPromptConfirmer(a.cmd.InOrStdin(), a.cmd.ErrOrStderr())
	a.closers = append(a.closers, confirmer)
	opts = append([]orchestrator.Option{
		orchestrator.WithConfirmer(confirmer),
		orchestrator.WithLogger(a.log),
		orchestrator.WithTracer(telemetry.Tracer()),
	}, opts...)
	return orchestrator.New(d, opts...)
}

// close releases what the command's orchestrators hold open.
func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// lookup resolves a tool name, mapping an unknown name to exit code 1.
func (a *app) lookup(name string) (manifest.ToolDescriptor, error) {
	d, err := a.manifest.Lookup(name)
	if errors.Is(err, manifest.ErrUnknownTool) {
		return d, exitError(1, "unknown tool %q (run '%s list' to see available tools)", name, branding.CLIName())
	}
	if err != nil {
		return d, fmt.Errorf("looking up %s: %w", name, err)
	}
	return d, nil
}

// probeAll probes descs in order. An interrupt yields exit code 1 and no
// states: tools left unprobed must not be reported as missing.
func (a *app) probeAll(descs []manifest.ToolDescriptor) ([]probe.ToolState, error) {
	ctx := a.cmd.Context()
	states := a.prober.ProbeAll(ctx, descs)
	if ctx.Err() != nil {
		return nil, exitError(1, "interrupted after probing %d of %d tools", len(states), len(descs))
	}
	return states, nil
}
