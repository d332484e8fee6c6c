// Package dispatch installs and updates single tools. Install walks a
// tool's chain, trying each entry that applies to the resolved backend (or
// whose driver is on PATH) and falling back on failure. Update runs the
// tool's update strategy, then re-probes: the observed version, not the
// command's exit status, decides between Updated and Unchanged.
//
// Every external command is bounded by a timeout and, in dry-run mode,
// printed instead of run.
package dispatch
