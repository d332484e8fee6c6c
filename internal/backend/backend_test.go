package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/devkit-labs/devkit/internal/testutil"
)

func TestNew_DispatchesByKind(t *testing.T) {
	tests := []struct {
		kind   manifest.Backend
		marker string
	}{
		{manifest.BackendBrew, "brew"},
		{manifest.BackendApt, "apt-get"},
		{manifest.BackendDnf, "dnf"},
		{manifest.BackendYum, "yum"},
		{manifest.BackendPacman, "pacman"},
		{manifest.BackendZypper, "zypper"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			b, err := New(tt.kind, Options{Runner: testutil.NewFakeRunner()})
			if err != nil {
				t.Fatalf("New(%s) error: %v", tt.kind, err)
			}
			if b.Kind() != tt.kind {
				t.Errorf("Kind() = %q, want %q", b.Kind(), tt.kind)
			}
			if b.Marker() != tt.marker {
				t.Errorf("Marker() = %q, want %q", b.Marker(), tt.marker)
			}
		})
	}
}

func TestNew_None(t *testing.T) {
	_, err := New(manifest.BackendNone, Options{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("New(none) error = %v, want ErrUnavailable", err)
	}
}

func TestPlan_Commands(t *testing.T) {
	tests := []struct {
		kind manifest.Backend
		sudo bool
		op   Op
		want []string
	}{
		{manifest.BackendBrew, true, OpInstall, []string{"brew install widget"}},
		{manifest.BackendBrew, true, OpUpgrade, []string{"brew upgrade widget"}},
		{manifest.BackendApt, true, OpInstall, []string{"sudo apt-get update", "sudo apt-get install -y widget"}},
		{manifest.BackendApt, false, OpUpgrade, []string{"apt-get update", "apt-get install --only-upgrade -y widget"}},
		{manifest.BackendDnf, true, OpUpgrade, []string{"sudo dnf upgrade -y widget"}},
		{manifest.BackendYum, true, OpUpgrade, []string{"sudo yum update -y widget"}},
		{manifest.BackendYum, false, OpInstall, []string{"yum install -y widget"}},
		{manifest.BackendPacman, true, OpInstall, []string{"sudo pacman -S --needed --noconfirm widget"}},
		{manifest.BackendZypper, false, OpUpgrade, []string{"zypper --non-interactive update widget"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.op.String(), func(t *testing.T) {
			b, err := New(tt.kind, Options{Runner: testutil.NewFakeRunner(), Sudo: tt.sudo})
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, c := range b.Plan(tt.op, "widget") {
				got = append(got, c.String())
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Plan = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstall_RunsCommand(t *testing.T) {
	fake := testutil.NewFakeRunner()
	b, _ := New(manifest.BackendBrew, Options{Runner: fake})

	if err := b.Install(context.Background(), "widget"); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if !fake.Ran("brew install widget") {
		t.Errorf("calls = %v, want brew install widget", fake.Calls())
	}
}

func TestInstall_PropagatesFailure(t *testing.T) {
	fake := testutil.NewFakeRunner().On("brew install widget", testutil.Fail(1, "Error: No available formula"))
	b, _ := New(manifest.BackendBrew, Options{Runner: fake})

	err := b.Install(context.Background(), "widget")
	var exitErr *platform.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Install error = %v, want *platform.ExitError", err)
	}
}

func TestApt_RefreshesOnce(t *testing.T) {
	fake := testutil.NewFakeRunner()
	b, _ := New(manifest.BackendApt, Options{Runner: fake})
	ctx := context.Background()

	if err := b.Install(ctx, "jq"); err != nil {
		t.Fatal(err)
	}
	if err := b.Upgrade(ctx, "git"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"apt-get update",
		"apt-get install -y jq",
		"apt-get install --only-upgrade -y git",
	}
	if got := fake.Calls(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestApt_FailedRefreshRetries(t *testing.T) {
	fake := testutil.NewFakeRunner().On("apt-get update", testutil.Sequence(
		testutil.Fail(100, "Temporary failure resolving"),
		testutil.Output(""),
	))
	b, _ := New(manifest.BackendApt, Options{Runner: fake})
	ctx := context.Background()

	if err := b.Install(ctx, "jq"); err == nil {
		t.Fatal("expected refresh failure")
	}
	if fake.Ran("apt-get install -y jq") {
		t.Error("install ran after failed refresh")
	}
	if err := b.Install(ctx, "jq"); err != nil {
		t.Fatalf("second Install error: %v", err)
	}
	if !fake.Ran("apt-get install -y jq") {
		t.Errorf("calls = %v", fake.Calls())
	}
}
