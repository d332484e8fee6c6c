package report

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/devkit-labs/devkit/internal/probe"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)

	markerStyles = map[string]lipgloss.Style{
		"ok":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"new":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"up":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"warn": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"miss": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"skip": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"fail": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}

	markerText = map[string]string{
		"ok":   "[ OK ]",
		"new":  "[ NEW]",
		"up":   "[ UP ]",
		"warn": "[WARN]",
		"miss": "[MISS]",
		"skip": "[SKIP]",
		"fail": "[FAIL]",
	}

	statusMarkers = map[probe.Status]string{
		probe.StatusInstalled: "new",
		probe.StatusUpdated:   "up",
		probe.StatusUnchanged: "ok",
		probe.StatusSkipped:   "skip",
		probe.StatusFailed:    "fail",
	}
)

// ColorEnabled reports whether styled output should be written to out: it
// must be a character device on a capable terminal and color must not be
// turned off with noColor or NO_COLOR.
func ColorEnabled(out io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return false
		}
	}
	return true
}

// styler applies lipgloss styles only when color is on.
type styler struct {
	color bool
}

func (s styler) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Render(text)
}

func (s styler) marker(kind string) string {
	return s.render(markerStyles[kind], markerText[kind])
}

func (s styler) header(text string) string {
	return s.render(headerStyle, text)
}

func (s styler) faint(text string) string {
	return s.render(faintStyle, text)
}

// stateMarker picks the marker for a probed tool.
func (s styler) stateMarker(installed bool, version string) string {
	switch {
	case !installed:
		return s.marker("miss")
	case version == "":
		return s.marker("warn")
	default:
		return s.marker("ok")
	}
}

func (s styler) statusMarker(status probe.Status) string {
	kind, ok := statusMarkers[status]
	if !ok {
		kind = "fail"
	}
	return s.marker(kind)
}
