package orchestrator

import (
	"time"

	"github.com/devkit-labs/devkit/internal/probe"
)

// Action is what the orchestrator attempted for one tool.
type Action string

const (
	ActionInstall Action = "install"
	ActionUpdate  Action = "update"
)

// Outcome is the result for one processed tool.
type Outcome struct {
	Tool     string             `json:"tool" yaml:"tool"`
	Category string             `json:"category" yaml:"category"`
	Action   Action             `json:"action" yaml:"action"`
	Result   probe.ActionResult `json:"result" yaml:"result"`
	// Prior is the state observed before acting.
	Prior probe.ToolState `json:"-" yaml:"-"`
}

// After is the tool's state implied by the result, without probing again.
func (o Outcome) After() probe.ToolState {
	after := o.Prior
	after.LastAction = &o.Result
	switch o.Result.Status {
	case probe.StatusInstalled, probe.StatusUpdated, probe.StatusUnchanged:
		after.Installed = true
		if o.Result.After != "" {
			after.Version = o.Result.After
		}
	}
	return after
}

// Summary accumulates the outcomes of one batch run.
type Summary struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Policy    Policy    `json:"policy" yaml:"policy"`
	Installed int       `json:"installed" yaml:"installed"`
	Updated   int       `json:"updated" yaml:"updated"`
	Unchanged int       `json:"unchanged" yaml:"unchanged"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
	Failed    int       `json:"failed" yaml:"failed"`
	Results   []Outcome `json:"results" yaml:"results"`
	// Interrupted is set when the run was cancelled before every tool was
	// processed. Results up to that point remain valid.
	Interrupted bool          `json:"interrupted" yaml:"interrupted"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

func (s *Summary) add(o Outcome) {
	s.Results = append(s.Results, o)
	switch o.Result.Status {
	case probe.StatusInstalled:
		s.Installed++
	case probe.StatusUpdated:
		s.Updated++
	case probe.StatusUnchanged:
		s.Unchanged++
	case probe.StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Total is the number of tools processed.
func (s Summary) Total() int {
	return s.Installed + s.Updated + s.Unchanged + s.Skipped + s.Failed
}

// Failures returns the outcomes that failed.
func (s Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Results {
		if o.Result.Status == probe.StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// States returns the tool states before and after the run, in order.
func (s Summary) States() (before, after []probe.ToolState) {
	for _, o := range s.Results {
		before = append(before, o.Prior)
		after = append(after, o.After())
	}
	return before, after
}
