// Package logging builds the zerolog logger used for diagnostics. Results
// and progress meant for the user are written directly by commands; the
// logger carries the rest (chosen strategies, fallbacks, captured stderr).
package logging
