// Package manifest defines the tool registry: one ToolDescriptor per tool,
// holding its category, ordered install chain, version probe, and update
// strategy. Manifests are YAML, validated against an embedded JSON Schema
// and then against invariants the schema cannot express (unique names,
// manual fallback last). A built-in manifest is embedded from tools.yaml.
package manifest
