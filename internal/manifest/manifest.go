package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownTool is returned by Lookup when no tool has the requested name.
var ErrUnknownTool = errors.New("unknown tool")

// Manifest is the validated, read-only set of tool descriptors.
type Manifest struct {
	tools []ToolDescriptor
	index map[string]int
}

// New validates descs and builds a Manifest sorted by name. Every invariant
// violation is reported in a single *ValidationError.
func New(descs ...ToolDescriptor) (*Manifest, error) {
	var issues []ValidationIssue
	seen := make(map[string]int, len(descs))

	tools := make([]ToolDescriptor, 0, len(descs))
	for i, d := range descs {
		d = withDefaults(d)
		path := fmt.Sprintf("/tools/%d", i)
		if d.Name != "" {
			if first, dup := seen[d.Name]; dup {
				issues = append(issues, ValidationIssue{
					Path:    path + "/name",
					Keyword: "unique",
					Message: fmt.Sprintf("duplicate tool name %q (first defined at /tools/%d)", d.Name, first),
				})
			}
			seen[d.Name] = i
		}
		issues = append(issues, checkDescriptor(path, d)...)
		tools = append(tools, d)
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	sort.SliceStable(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	index := make(map[string]int, len(tools))
	for i, d := range tools {
		index[d.Name] = i
	}
	return &Manifest{tools: tools, index: index}, nil
}

// withDefaults fills Binary, probe args, and update kind when unset.
func withDefaults(d ToolDescriptor) ToolDescriptor {
	if d.Binary == "" {
		d.Binary = d.Name
	}
	if len(d.Probe.Args) == 0 {
		d.Probe.Args = []string{"--version"}
	}
	if d.Update.Kind == "" {
		d.Update.Kind = UpdateBackend
	}
	return d
}

// checkDescriptor enforces the per-tool invariants.
func checkDescriptor(path string, d ToolDescriptor) []ValidationIssue {
	var issues []ValidationIssue
	add := func(field, keyword, msg string) {
		issues = append(issues, ValidationIssue{Path: path + field, Keyword: keyword, Message: msg})
	}

	if d.Name == "" {
		add("/name", "required", "tool name is required")
	}
	if d.Category == "" {
		add("/category", "required", fmt.Sprintf("tool %q has no category", d.Name))
	}
	if len(d.Install) == 0 {
		add("/install", "minItems", fmt.Sprintf("tool %q has an empty install chain", d.Name))
	}

	for i, s := range d.Install {
		entry := fmt.Sprintf("/install/%d", i)
		switch v := s.(type) {
		case BackendInstall:
			if _, ok := ParseBackend(string(v.Backend)); !ok || v.Backend == BackendNone {
				add(entry, "enum", fmt.Sprintf("unsupported backend %q", v.Backend))
			}
			if v.Package == "" {
				add(entry, "minLength", "backend entry needs a package name")
			}
		case CommandInstall:
			if _, ok := ParseDriver(string(v.Driver)); !ok {
				add(entry, "enum", fmt.Sprintf("unsupported driver %q", v.Driver))
			}
			if v.Target == "" {
				add(entry, "minLength", "command entry needs a target")
			}
		case ManualInstall:
			if v.URL == "" {
				add(entry, "minLength", "manual entry needs a URL")
			}
			if i != len(d.Install)-1 {
				add(entry, "manual", "manual entry must be the last in the chain")
			}
		case nil:
			add(entry, "required", "empty install entry")
		}
	}

	switch d.Update.Kind {
	case UpdateChain, UpdateBackend:
	case UpdateRoutine:
		if !isRoutine(d.Update.Routine) {
			add("/update/routine", "enum", fmt.Sprintf("unknown update routine %q", d.Update.Routine))
		}
		if d.Update.Routine == RoutineRemoteScript && d.Update.URL == "" {
			add("/update/url", "required", "remote-script routine needs a url")
		}
		if d.Update.Routine == RoutineExec && len(d.Update.Args) == 0 {
			add("/update/args", "required", "exec routine needs args")
		}
	default:
		add("/update", "enum", fmt.Sprintf("unknown update strategy %q", d.Update.Kind))
	}
	return issues
}

func isRoutine(name string) bool {
	for _, r := range Routines {
		if r == name {
			return true
		}
	}
	return false
}

// Lookup returns the descriptor named name.
func (m *Manifest) Lookup(name string) (ToolDescriptor, error) {
	i, ok := m.index[name]
	if !ok {
		return ToolDescriptor{}, fmt.Errorf("%w %q", ErrUnknownTool, name)
	}
	return m.tools[i], nil
}

// All returns every descriptor sorted by name.
func (m *Manifest) All() []ToolDescriptor {
	out := make([]ToolDescriptor, len(m.tools))
	copy(out, m.tools)
	return out
}

// ByCategory returns the descriptors in category, in name order. A
// "category:subcategory" tag narrows to that subcategory.
func (m *Manifest) ByCategory(category string) []ToolDescriptor {
	cat, sub, hasSub := strings.Cut(category, ":")
	var out []ToolDescriptor
	for _, d := range m.tools {
		if d.Category != cat {
			continue
		}
		if hasSub && d.Subcategory != sub {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (m *Manifest) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range m.tools {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Names returns every tool name, sorted.
func (m *Manifest) Names() []string {
	out := make([]string, len(m.tools))
	for i, d := range m.tools {
		out[i] = d.Name
	}
	return out
}

// Len returns the number of tools.
func (m *Manifest) Len() int { return len(m.tools) }
