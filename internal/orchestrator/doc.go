// Package orchestrator applies install and update across many tools, one at
// a time in manifest order, under a confirmation policy. A failure on one
// tool is recorded in the run summary and never stops the batch.
package orchestrator
