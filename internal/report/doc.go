// Package report summarises probed tool states: per-category counts,
// overall coverage, the missing list and before/after version changes. Build
// and DiffVersions are pure; the Printer renders their results as text.
package report
