package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

// New returns a debug-level logger that writes through t.Log, so log lines
// appear only for failing or verbose tests.
func New(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).
		With().Str("test", t.Name()).Logger()
}
