// Package backend maps host package managers to a common Backend interface
// (Homebrew, apt, dnf, yum, pacman, zypper) and resolves which one is usable
// on the current machine. Resolution probes marker executables in a fixed
// priority order, cross-platform Homebrew first, and is cached per Resolver.
package backend
