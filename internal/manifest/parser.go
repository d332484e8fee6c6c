package manifest

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed tools.yaml
var defaultManifest []byte

var (
	defaultOnce sync.Once
	defaultM    *Manifest
	defaultErr  error
)

// rawFile is the on-disk YAML shape.
type rawFile struct {
	Tools []rawTool `yaml:"tools"`
}

type rawTool struct {
	Name        string              `yaml:"name"`
	Binary      string              `yaml:"binary"`
	Description string              `yaml:"description"`
	Category    string              `yaml:"category"`
	Subcategory string              `yaml:"subcategory"`
	Homepage    string              `yaml:"homepage"`
	VersionArgs []string            `yaml:"version_args"`
	Install     []map[string]string `yaml:"install"`
	Update      rawUpdate           `yaml:"update"`
}

// rawUpdate accepts either a bare strategy name ("chain", "backend") or a
// routine mapping ({routine: rustup}).
type rawUpdate struct {
	Kind    string
	Routine string   `yaml:"routine"`
	URL     string   `yaml:"url"`
	Args    []string `yaml:"args"`
}

func (u *rawUpdate) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		u.Kind = node.Value
		return nil
	case yaml.MappingNode:
		var m struct {
			Routine string   `yaml:"routine"`
			URL     string   `yaml:"url"`
			Args    []string `yaml:"args"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		u.Kind = string(UpdateRoutine)
		u.Routine, u.URL, u.Args = m.Routine, m.URL, m.Args
		return nil
	default:
		return fmt.Errorf("line %d: update must be a strategy name or a routine mapping", node.Line)
	}
}

// Load validates data against the manifest schema, converts it to typed
// descriptors, and checks the manifest invariants. Any violation fails the
// whole load.
func Load(data []byte) (*Manifest, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Issues: result.Issues}
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	descs := make([]ToolDescriptor, 0, len(raw.Tools))
	for _, rt := range raw.Tools {
		descs = append(descs, rt.descriptor())
	}
	return New(descs...)
}

// ParseFile reads and loads a manifest file.
func ParseFile(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading manifest %s: %w", path, err)
	}
	return m, nil
}

// Default returns the built-in manifest, loaded once.
func Default() (*Manifest, error) {
	defaultOnce.Do(func() {
		defaultM, defaultErr = Load(defaultManifest)
		if defaultErr != nil {
			defaultErr = fmt.Errorf("loading built-in manifest: %w", defaultErr)
		}
	})
	return defaultM, defaultErr
}

func (rt rawTool) descriptor() ToolDescriptor {
	d := ToolDescriptor{
		Name:        rt.Name,
		Binary:      rt.Binary,
		Description: rt.Description,
		Category:    rt.Category,
		Subcategory: rt.Subcategory,
		Homepage:    rt.Homepage,
		Probe:       ProbeSpec{Args: rt.VersionArgs},
		Update: UpdateStrategy{
			Kind:    UpdateKind(rt.Update.Kind),
			Routine: rt.Update.Routine,
			URL:     rt.Update.URL,
			Args:    rt.Update.Args,
		},
	}
	for _, entry := range rt.Install {
		d.Install = append(d.Install, strategyFromEntry(entry))
	}
	return d
}

// strategyFromEntry converts a single-key chain entry such as {brew: git}.
// The schema guarantees exactly one key; a multi-key map is resolved
// deterministically by taking the smallest key.
func strategyFromEntry(entry map[string]string) InstallStrategy {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	key, value := keys[0], entry[keys[0]]

	if key == "manual" {
		return ManualInstall{URL: value}
	}
	if d, ok := ParseDriver(key); ok {
		return CommandInstall{Driver: d, Target: value}
	}
	return BackendInstall{Backend: Backend(key), Package: value}
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
