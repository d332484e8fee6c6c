package report

import (
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/probe"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToolLine is one tool as shown in a report.
type ToolLine struct {
	Name        string `json:"name" yaml:"name"`
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Installed   bool   `json:"installed" yaml:"installed"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
}

// CategoryReport counts the tools of one category.
type CategoryReport struct {
	Name      string     `json:"name" yaml:"name"`
	Title     string     `json:"title" yaml:"title"`
	Installed int        `json:"installed" yaml:"installed"`
	Missing   int        `json:"missing" yaml:"missing"`
	Total     int        `json:"total" yaml:"total"`
	Tools     []ToolLine `json:"tools" yaml:"tools"`
}

// MissingTool is a tool that is not on PATH.
type MissingTool struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	// Manual is the manual install URL, when the tool has one.
	Manual string `json:"manual,omitempty" yaml:"manual,omitempty"`
}

// Report is the status of every tool in a manifest.
type Report struct {
	Categories []CategoryReport `json:"categories" yaml:"categories"`
	Installed  int              `json:"installed" yaml:"installed"`
	Total      int              `json:"total" yaml:"total"`
	// Coverage is Installed*100/Total rounded down, 0 for an empty manifest.
	Coverage int           `json:"coverage" yaml:"coverage"`
	Missing  []MissingTool `json:"missing" yaml:"missing"`
}

var titler = cases.Title(language.English)

// Title formats a category name for headings.
func Title(category string) string {
	return titler.String(category)
}

// Build computes a Report for m from states. Tools without a state count as
// missing.
func Build(m *manifest.Manifest, states []probe.ToolState) Report {
	byName := make(map[string]probe.ToolState, len(states))
	for _, s := range states {
		byName[s.Name()] = s
	}

	r := Report{Missing: []MissingTool{}}
	for _, category := range m.Categories() {
		cr := CategoryReport{Name: category, Title: Title(category)}
		for _, d := range m.ByCategory(category) {
			s := byName[d.Name]
			cr.Tools = append(cr.Tools, ToolLine{
				Name:        d.Name,
				Subcategory: d.Subcategory,
				Installed:   s.Installed,
				Version:     s.Version,
				Path:        s.Path,
			})
			cr.Total++
			if s.Installed {
				cr.Installed++
				continue
			}
			cr.Missing++
			url, _ := d.ManualURL()
			r.Missing = append(r.Missing, MissingTool{Name: d.Name, Category: category, Manual: url})
		}
		r.Installed += cr.Installed
		r.Total += cr.Total
		r.Categories = append(r.Categories, cr)
	}
	r.Coverage = Coverage(r.Installed, r.Total)
	return r
}

// Coverage is installed*100/total rounded down.
func Coverage(installed, total int) int {
	if total == 0 {
		return 0
	}
	return installed * 100 / total
}
