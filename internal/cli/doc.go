// Package cli defines the Cobra command tree for the devkit CLI. Each file
// in this package registers one top-level command (list, check, update,
// install, status, etc.) with the root command. Commands only parse flags,
// format output and map errors to exit codes; the work happens in the
// manifest, probe, dispatch, orchestrator and report packages.
package cli
