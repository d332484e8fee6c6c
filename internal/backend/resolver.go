package backend

import (
	"sync"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/rs/zerolog"
)

var markers = map[manifest.Backend]string{
	manifest.BackendBrew:   "brew",
	manifest.BackendApt:    "apt-get",
	manifest.BackendDnf:    "dnf",
	manifest.BackendYum:    "yum",
	manifest.BackendPacman: "pacman",
	manifest.BackendZypper: "zypper",
}

// MarkerFor returns the executable that signals kind is installed.
func MarkerFor(kind manifest.Backend) string {
	return markers[kind]
}

// Resolver picks the active backend for a run. The host is probed once;
// later calls return the cached answer.
type Resolver struct {
	runner   platform.Runner
	override string
	log      zerolog.Logger

	once     sync.Once
	resolved manifest.Backend
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithOverride forces a backend by name instead of probing in priority
// order. The forced backend must still be present on the host.
func WithOverride(name string) ResolverOption {
	return func(r *Resolver) {
		r.override = name
	}
}

// WithResolverLogger sets the logger for resolution diagnostics.
func WithResolverLogger(l zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver returns a Resolver probing through runner.
func NewResolver(runner platform.Runner, opts ...ResolverOption) *Resolver {
	r := &Resolver{runner: runner, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first backend in manifest.Backends whose marker is on
// PATH, or manifest.BackendNone.
func (r *Resolver) Resolve() manifest.Backend {
	r.once.Do(func() {
		r.resolved = r.detect()
		r.log.Debug().Str("backend", string(r.resolved)).Msg("resolved package manager")
	})
	return r.resolved
}

func (r *Resolver) detect() manifest.Backend {
	if r.override != "" {
		kind, ok := manifest.ParseBackend(r.override)
		switch {
		case !ok:
			r.log.Warn().Str("backend", r.override).Msg("unknown backend override, detecting instead")
		case kind == manifest.BackendNone:
			return manifest.BackendNone
		case r.present(kind):
			return kind
		default:
			r.log.Warn().Str("backend", r.override).Str("marker", MarkerFor(kind)).
				Msg("forced backend not found on PATH")
			return manifest.BackendNone
		}
	}

	for _, kind := range manifest.Backends {
		if r.present(kind) {
			return kind
		}
	}
	return manifest.BackendNone
}

func (r *Resolver) present(kind manifest.Backend) bool {
	_, err := r.runner.LookPath(MarkerFor(kind))
	return err == nil
}
