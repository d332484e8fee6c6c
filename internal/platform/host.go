package platform

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"
)

// osReleasePath is a variable so tests can point at a fixture.
var osReleasePath = "/etc/os-release"

// Host describes the machine the CLI runs on.
type Host struct {
	OS      string
	Arch    string
	Distro  string // os-release ID, e.g. "ubuntu"
	Family  string // "debian", "rhel", "arch", "suse", or ""
	Name    string // os-release PRETTY_NAME
	Version string // os-release VERSION_ID
}

// DetectHost reports the current OS and, on Linux, the distribution.
func DetectHost() Host {
	h := Host{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if h.OS != "linux" {
		return h
	}
	f, err := os.Open(osReleasePath)
	if err != nil {
		return h
	}
	defer f.Close()
	h.applyOSRelease(ParseOSRelease(f))
	return h
}

// ParseOSRelease reads KEY=value pairs in os-release(5) format.
func ParseOSRelease(r io.Reader) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}
	return out
}

func (h *Host) applyOSRelease(kv map[string]string) {
	h.Distro = kv["ID"]
	h.Name = kv["PRETTY_NAME"]
	h.Version = kv["VERSION_ID"]

	candidates := append([]string{h.Distro}, strings.Fields(kv["ID_LIKE"])...)
	for _, id := range candidates {
		if fam := familyOf(id); fam != "" {
			h.Family = fam
			return
		}
	}
}

func familyOf(id string) string {
	switch id {
	case "debian", "ubuntu", "pop", "linuxmint", "mint", "elementary", "raspbian":
		return "debian"
	case "fedora", "centos", "rhel", "rocky", "almalinux", "alma", "amzn":
		return "rhel"
	case "arch", "manjaro", "endeavouros":
		return "arch"
	case "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sles", "suse":
		return "suse"
	}
	return ""
}

// String returns a short human-readable description.
func (h Host) String() string {
	parts := []string{h.OS}
	if h.Name != "" {
		parts = append(parts, "("+h.Name+")")
	} else if h.Distro != "" {
		parts = append(parts, "("+h.Distro+")")
	}
	parts = append(parts, h.Arch)
	return strings.Join(parts, " ")
}

// IsRoot reports whether the process runs as uid 0. Always false on Windows.
func IsRoot() bool {
	return os.Geteuid() == 0
}
