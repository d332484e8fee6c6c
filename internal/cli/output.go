package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/probe"
	"go.yaml.in/yaml/v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return exitError(1, "unknown output format %q (want text, json or yaml)", format)
	}
}

// structured reports whether results are printed as JSON or YAML.
func structured() bool {
	return outputFormat == formatJSON || outputFormat == formatYAML
}

// writeStructured encodes v in the selected structured format.
func writeStructured(w io.Writer, v any) error {
	switch outputFormat {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
}

// toolView is a manifest entry as printed by list.
type toolView struct {
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Subcategory string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Homepage    string   `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Install     []string `json:"install" yaml:"install"`
	Update      string   `json:"update" yaml:"update"`
}

func newToolView(d manifest.ToolDescriptor) toolView {
	v := toolView{
		Name:        d.Name,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Description: d.Description,
		Homepage:    d.Homepage,
		Update:      d.Update.String(),
	}
	for _, s := range d.Install {
		v.Install = append(v.Install, s.String())
	}
	return v
}

// stateView is a probed tool as printed by check, which and outdated.
type stateView struct {
	Name      string `json:"name" yaml:"name"`
	Category  string `json:"category" yaml:"category"`
	Installed bool   `json:"installed" yaml:"installed"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Output    string `json:"output,omitempty" yaml:"output,omitempty"`
}

func newStateViews(states []probe.ToolState) []stateView {
	views := make([]stateView, 0, len(states))
	for _, s := range states {
		views = append(views, stateView{
			Name:      s.Name(),
			Category:  s.Descriptor.Category,
			Installed: s.Installed,
			Version:   s.Version,
			Path:      s.Path,
			Output:    s.Output,
		})
	}
	return views
}
