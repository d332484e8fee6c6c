package report

import (
	"testing"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/probe"
)

func state(name string, installed bool, version string) probe.ToolState {
	return probe.ToolState{
		Descriptor: manifest.ToolDescriptor{Name: name},
		Installed:  installed,
		Version:    version,
	}
}

func TestDiffVersions(t *testing.T) {
	before := []probe.ToolState{
		state("same", true, "1.0.0"),
		state("up", true, "1.0.0"),
		state("down", true, "2.0.0"),
		state("odd", true, "nightly-a"),
		state("new", false, ""),
		state("gone", true, "1.0.0"),
		state("vprefix", true, "v1.2.0"),
		state("unknown", true, ""),
		state("still-missing", false, ""),
	}
	after := []probe.ToolState{
		state("same", true, "1.0.0"),
		state("up", true, "1.1.0"),
		state("down", true, "1.9.0"),
		state("odd", true, "nightly-b"),
		state("new", true, "0.1.0"),
		state("gone", false, ""),
		state("vprefix", true, "1.3"),
		state("unknown", true, "1.0.0"),
		state("still-missing", false, ""),
		state("unseen", true, "1.0.0"),
	}

	got := DiffVersions(before, after)
	want := []VersionChange{
		{Tool: "up", Before: "1.0.0", After: "1.1.0", Direction: DirectionUpgraded},
		{Tool: "down", Before: "2.0.0", After: "1.9.0", Direction: DirectionDowngraded},
		{Tool: "odd", Before: "nightly-a", After: "nightly-b", Direction: DirectionChanged},
		{Tool: "new", After: "0.1.0", Direction: DirectionInstalled},
		{Tool: "gone", Before: "1.0.0", Direction: DirectionRemoved},
		{Tool: "vprefix", Before: "v1.2.0", After: "1.3", Direction: DirectionUpgraded},
		{Tool: "unknown", After: "1.0.0", Direction: DirectionChanged},
	}
	if len(got) != len(want) {
		t.Fatalf("DiffVersions = %+v, want %d changes", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDiffVersions_NoChanges(t *testing.T) {
	s := []probe.ToolState{state("git", true, "2.43.0")}
	if got := DiffVersions(s, s); len(got) != 0 {
		t.Errorf("DiffVersions = %+v, want none", got)
	}
}
