package orchestrator

import "fmt"

// Policy decides whether each action is confirmed by the user.
type Policy int

const (
	// Interactive asks before every install or update.
	Interactive Policy = iota
	// ForceAll proceeds without asking (--force).
	ForceAll
	// AutoYes answers yes to every question (--yes-to-all or the yes
	// environment setting).
	AutoYes
)

// ParsePolicy maps command-line switches to a Policy. force wins over yes.
func ParsePolicy(force, yes bool) Policy {
	switch {
	case force:
		return ForceAll
	case yes:
		return AutoYes
	default:
		return Interactive
	}
}

// Prompts reports whether p asks the user before acting.
func (p Policy) Prompts() bool { return p == Interactive }

func (p Policy) String() string {
	switch p {
	case Interactive:
		return "interactive"
	case ForceAll:
		return "force"
	case AutoYes:
		return "yes"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// MarshalText renders p by name in JSON and YAML output.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (p *Policy) UnmarshalText(text []byte) error {
	for _, candidate := range []Policy{Interactive, ForceAll, AutoYes} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown policy %q", text)
}
