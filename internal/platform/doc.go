// Package platform wraps the host: running external commands with
// captured output and a bounded wait, looking up executables on PATH,
// detecting the OS and Linux distribution, and setting file permissions
// in a cross-platform way.
package platform
