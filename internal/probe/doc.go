// Package probe answers "is this tool installed, and which version?" by
// checking PATH and running the tool's version command. It distinguishes a
// missing tool from one that is present but printed no usable version.
package probe
