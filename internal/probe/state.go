package probe

import "github.com/devkit-labs/devkit/internal/manifest"

// Status is the outcome class of an install or update attempt.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ActionResult is the outcome of one install or update attempt. Before and
// After are empty when the version is unknown.
type ActionResult struct {
	Status  Status `json:"status" yaml:"status"`
	Before  string `json:"before,omitempty" yaml:"before,omitempty"`
	After   string `json:"after,omitempty" yaml:"after,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Err is the underlying cause of a Failed result, for errors.Is checks.
	Err error `json:"-" yaml:"-"`
}

// ToolState is a tool as observed on the host right now. It is never cached
// between runs.
type ToolState struct {
	Descriptor manifest.ToolDescriptor
	Installed  bool
	// Path is where the executable was found.
	Path string
	// Version is the extracted version, or "" when not installed or when
	// the probe output could not be read.
	Version string
	// Output is the raw first line the probe printed.
	Output     string
	LastAction *ActionResult
}

// Name is shorthand for Descriptor.Name.
func (s ToolState) Name() string { return s.Descriptor.Name }

// VersionKnown reports whether an installed tool reported a usable version.
func (s ToolState) VersionKnown() bool { return s.Installed && s.Version != "" }
