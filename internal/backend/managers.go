package backend

import (
	"context"
	"sync"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
)

// Brew is Homebrew (macOS and Linux). It never needs sudo.
type Brew struct{ *executor }

func (b *Brew) Kind() manifest.Backend { return manifest.BackendBrew }
func (b *Brew) Marker() string { return MarkerFor(manifest.BackendBrew) }

func (b *Brew) Plan(op Op, pkg string) []platform.Command {
	if op == OpUpgrade {
		return []platform.Command{b.command(false, "brew", "upgrade", pkg)}
	}
	return []platform.Command{b.command(false, "brew", "install", pkg)}
}

func (b *Brew) Install(ctx context.Context, pkg string) error { return b.run(ctx, b.Plan(OpInstall, pkg)) }
func (b *Brew) Upgrade(ctx context.Context, pkg string) error { return b.run(ctx, b.Plan(OpUpgrade, pkg)) }

// Apt is apt-get on Debian-family systems. The package index is refreshed
// before the first operation of a run.
type Apt struct {
	*executor
	mu        sync.Mutex
	refreshed bool
}

func (a *Apt) Kind() manifest.Backend { return manifest.BackendApt }
func (a *Apt) Marker() string { return MarkerFor(manifest.BackendApt) }

func (a *Apt) Plan(op Op, pkg string) []platform.Command {
	var cmds []platform.Command
	a.mu.Lock()
	if !a.refreshed {
		cmds = append(cmds, a.command(true, "apt-get", "update"))
	}
	a.mu.Unlock()
	if op == OpUpgrade {
		return append(cmds, a.command(true, "apt-get", "install", "--only-upgrade", "-y", pkg))
	}
	return append(cmds, a.command(true, "apt-get", "install", "-y", pkg))
}

func (a *Apt) Install(ctx context.Context, pkg string) error { return a.apply(ctx, OpInstall, pkg) }
func (a *Apt) Upgrade(ctx context.Context, pkg string) error { return a.apply(ctx, OpUpgrade, pkg) }

func (a *Apt) apply(ctx context.Context, op Op, pkg string) error {
	cmds := a.Plan(op, pkg)
	if len(cmds) > 1 {
		if err := a.run(ctx, cmds[:1]); err != nil {
			return err
		}
		a.mu.Lock()
		a.refreshed = true
		a.mu.Unlock()
		cmds = cmds[1:]
	}
	return a.run(ctx, cmds)
}

// Dnf covers dnf and its predecessor yum, which share a command syntax.
type Dnf struct {
	*executor
	bin  string
	kind manifest.Backend
}

func (d *Dnf) Kind() manifest.Backend { return d.kind }
func (d *Dnf) Marker() string { return MarkerFor(d.kind) }

func (d *Dnf) Plan(op Op, pkg string) []platform.Command {
	if op == OpUpgrade {
		verb := "upgrade"
		if d.kind == manifest.BackendYum {
			verb = "update"
		}
		return []platform.Command{d.command(true, d.bin, verb, "-y", pkg)}
	}
	return []platform.Command{d.command(true, d.bin, "install", "-y", pkg)}
}

func (d *Dnf) Install(ctx context.Context, pkg string) error { return d.run(ctx, d.Plan(OpInstall, pkg)) }
func (d *Dnf) Upgrade(ctx context.Context, pkg string) error { return d.run(ctx, d.Plan(OpUpgrade, pkg)) }

// Pacman is the Arch Linux package manager.
type Pacman struct{ *executor }

func (p *Pacman) Kind() manifest.Backend { return manifest.BackendPacman }
func (p *Pacman) Marker() string { return MarkerFor(manifest.BackendPacman) }

func (p *Pacman) Plan(op Op, pkg string) []platform.Command {
	if op == OpUpgrade {
		return []platform.Command{p.command(true, "pacman", "-S", "--noconfirm", pkg)}
	}
	return []platform.Command{p.command(true, "pacman", "-S", "--needed", "--noconfirm", pkg)}
}

func (p *Pacman) Install(ctx context.Context, pkg string) error { return p.run(ctx, p.Plan(OpInstall, pkg)) }
func (p *Pacman) Upgrade(ctx context.Context, pkg string) error { return p.run(ctx, p.Plan(OpUpgrade, pkg)) }

// Zypper is the openSUSE package manager.
type Zypper struct{ *executor }

func (z *Zypper) Kind() manifest.Backend { return manifest.BackendZypper }
func (z *Zypper) Marker() string { return MarkerFor(manifest.BackendZypper) }

func (z *Zypper) Plan(op Op, pkg string) []platform.Command {
	if op == OpUpgrade {
		return []platform.Command{z.command(true, "zypper", "--non-interactive", "update", pkg)}
	}
	return []platform.Command{z.command(true, "zypper", "--non-interactive", "install", pkg)}
}

func (z *Zypper) Install(ctx context.Context, pkg string) error { return z.run(ctx, z.Plan(OpInstall, pkg)) }
func (z *Zypper) Upgrade(ctx context.Context, pkg string) error { return z.run(ctx, z.Plan(OpUpgrade, pkg)) }
