package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/orchestrator"
	"github.com/devkit-labs/devkit/internal/probe"
)

// Printer renders reports as human-readable text.
type Printer struct {
	w     io.Writer
	style styler
}

// NewPrinter returns a Printer writing to w, styled when color is true.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, style: styler{color: color}}
}

func (p *Printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
}

func versionOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// WriteStatus prints every category with its tools, then the overall
// coverage line.
func (p *Printer) WriteStatus(r Report) error {
	for i, c := range r.Categories {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		fmt.Fprintf(p.w, "%s (%d/%d)\n", p.style.header(c.Title), c.Installed, c.Total)
		tw := p.table()
		for _, t := range c.Tools {
			version := t.Version
			if t.Installed && version == "" {
				version = "version unknown"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.style.stateMarker(t.Installed, t.Version), t.Name, versionOrDash(version))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(r.Categories) > 0 {
		fmt.Fprintln(p.w)
	}
	_, err := fmt.Fprintf(p.w, "%d/%d tools installed (%d%%)\n", r.Installed, r.Total, r.Coverage)
	return err
}

// WriteMissing prints one line per missing tool.
func (p *Printer) WriteMissing(r Report) error {
	if len(r.Missing) == 0 {
		_, err := fmt.Fprintln(p.w, "All tools are installed.")
		return err
	}
	tw := p.table()
	for _, m := range r.Missing {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.Category, p.style.faint(m.Manual))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\n%d of %d tools missing\n", len(r.Missing), r.Total)
	return err
}

// WriteCategories prints tools grouped by category on one line each, with
// an installed or missing marker per tool.
func (p *Printer) WriteCategories(r Report) error {
	tw := p.table()
	for _, c := range r.Categories {
		names := make([]string, len(c.Tools))
		for i, t := range c.Tools {
			mark := "✓"
			if !t.Installed {
				mark = "✗"
			}
			names[i] = t.Name + " " + mark
		}
		fmt.Fprintf(tw, "%s\t%d/%d\t%s\n", p.style.header(c.Title), c.Installed, c.Total, strings.Join(names, ", "))
	}
	return tw.Flush()
}

// WriteTools prints one probe line per state, as check does.
func (p *Printer) WriteTools(states []probe.ToolState) error {
	tw := p.table()
	for _, s := range states {
		detail := "not installed"
		if s.Installed {
			detail = versionOrDash(s.Version)
			if s.Version == "" {
				detail = "installed, version unknown"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.style.stateMarker(s.Installed, s.Version), s.Name(), detail)
	}
	return tw.Flush()
}

// WriteInventory prints the manifest entries in descs.
func (p *Printer) WriteInventory(descs []manifest.ToolDescriptor) error {
	tw := p.table()
	fmt.Fprintln(tw, "NAME\tCATEGORY\tINSTALL\tDESCRIPTION")
	for _, d := range descs {
		methods := make([]string, len(d.Install))
		for i, s := range d.Install {
			methods[i] = s.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Tag(), strings.Join(methods, ", "), d.Description)
	}
	return tw.Flush()
}

// WriteOutdated prints installed tools with their current versions.
func (p *Printer) WriteOutdated(states []probe.ToolState) error {
	tw := p.table()
	fmt.Fprintln(tw, "NAME\tVERSION\tUPDATE")
	n := 0
	for _, s := range states {
		if !s.Installed {
			continue
		}
		n++
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name(), versionOrDash(s.Version), s.Descriptor.Update)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n == 0 {
		_, err := fmt.Fprintln(p.w, "No tools installed.")
		return err
	}
	return nil
}

// WriteOutcome prints the result for one tool as it completes.
func (p *Printer) WriteOutcome(o orchestrator.Outcome) error {
	line := fmt.Sprintf("%s %s %s", p.style.statusMarker(o.Result.Status), o.Tool, o.Result.Status)
	switch {
	case o.Result.Status == probe.StatusUpdated:
		line += fmt.Sprintf(" %s -> %s", versionOrDash(o.Result.Before), o.Result.After)
	case o.Result.After != "":
		line += " " + o.Result.After
	}
	if o.Result.Message != "" {
		line += p.style.faint(" (" + o.Result.Message + ")")
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

// WriteSummary prints the batch counts and every failure with its reason.
func (p *Printer) WriteSummary(s orchestrator.Summary) error {
	fmt.Fprintln(p.w)
	if s.Interrupted {
		fmt.Fprintf(p.w, "%s run interrupted after %d tool(s)\n", p.style.marker("warn"), s.Total())
	}
	fmt.Fprintf(p.w, "%s installed %d, updated %d, unchanged %d, skipped %d, failed %d\n",
		p.style.header("Summary:"), s.Installed, s.Updated, s.Unchanged, s.Skipped, s.Failed)
	for _, f := range s.Failures() {
		fmt.Fprintf(p.w, "  %s %s: %s\n", p.style.marker("fail"), f.Tool, f.Result.Message)
	}
	return nil
}

// WriteChanges prints version changes, or nothing when there are none.
func (p *Printer) WriteChanges(changes []VersionChange) error {
	if len(changes) == 0 {
		return nil
	}
	fmt.Fprintln(p.w, p.style.header("Changes:"))
	tw := p.table()
	for _, c := range changes {
		fmt.Fprintf(tw, "  %s\t%s\t->\t%s\t%s\n", c.Tool, versionOrDash(c.Before), versionOrDash(c.After), c.Direction)
	}
	return tw.Flush()
}
