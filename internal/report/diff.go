package report

import (
	"github.com/devkit-labs/devkit/internal/probe"
)

// Direction classifies a version change.
type Direction string

const (
	DirectionUpgraded   Direction = "upgraded"
	DirectionDowngraded Direction = "downgraded"
	// DirectionChanged is a change between versions that do not parse as
	// semver, or one side of which is unknown.
	DirectionChanged   Direction = "changed"
	DirectionInstalled Direction = "installed"
	DirectionRemoved   Direction = "removed"
)

// VersionChange is one tool whose observed state differs between two runs.
type VersionChange struct {
	Tool      string    `json:"tool" yaml:"tool"`
	Before    string    `json:"before,omitempty" yaml:"before,omitempty"`
	After     string    `json:"after,omitempty" yaml:"after,omitempty"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// DiffVersions lists tools whose install state or version differs between
// before and after, in the order of after. Tools only present in before are
// ignored.
func DiffVersions(before, after []probe.ToolState) []VersionChange {
	prev := make(map[string]probe.ToolState, len(before))
	for _, s := range before {
		prev[s.Name()] = s
	}

	var changes []VersionChange
	for _, a := range after {
		b, ok := prev[a.Name()]
		if !ok {
			continue
		}
		c := VersionChange{Tool: a.Name(), Before: b.Version, After: a.Version}
		switch {
		case !b.Installed && a.Installed:
			c.Direction = DirectionInstalled
		case b.Installed && !a.Installed:
			c.Direction = DirectionRemoved
		case !a.Installed || b.Version == a.Version:
			continue
		default:
			c.Direction = direction(b.Version, a.Version)
		}
		changes = append(changes, c)
	}
	return changes
}

func direction(before, after string) Direction {
	if before == "" || after == "" {
		return DirectionChanged
	}
	cmp, err := probe.Compare(before, after)
	switch {
	case err != nil:
		return DirectionChanged
	case cmp < 0:
		return DirectionUpgraded
	case cmp > 0:
		return DirectionDowngraded
	default:
		return DirectionChanged
	}
}
