package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const ubuntuOSRelease = `PRETTY_NAME="Ubuntu 24.04 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
ID_LIKE=debian
# comment
`

func TestParseOSRelease(t *testing.T) {
	kv := ParseOSRelease(strings.NewReader(ubuntuOSRelease))
	if kv["ID"] != "ubuntu" {
		t.Errorf("ID = %q, want ubuntu", kv["ID"])
	}
	if kv["PRETTY_NAME"] != "Ubuntu 24.04 LTS" {
		t.Errorf("PRETTY_NAME = %q", kv["PRETTY_NAME"])
	}
}

func TestApplyOSRelease_Family(t *testing.T) {
	tests := []struct {
		content string
		family  string
	}{
		{ubuntuOSRelease, "debian"},
		{"ID=fedora\n", "rhel"},
		{"ID=rocky\nID_LIKE=\"rhel centos fedora\"\n", "rhel"},
		{"ID=endeavouros\nID_LIKE=arch\n", "arch"},
		{"ID=opensuse-tumbleweed\nID_LIKE=\"opensuse suse\"\n", "suse"},
		{"ID=nixos\n", ""},
		{"ID=mydistro\nID_LIKE=\"foo debian\"\n", "debian"},
	}
	for _, tt := range tests {
		var h Host
		h.applyOSRelease(ParseOSRelease(strings.NewReader(tt.content)))
		if h.Family != tt.family {
			t.Errorf("Family for %q = %q, want %q", tt.content, h.Family, tt.family)
		}
	}
}

func TestDetectHost_Fixture(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("os-release is only read on Linux")
	}
	path := filepath.Join(t.TempDir(), "os-release")
	if err := os.WriteFile(path, []byte(ubuntuOSRelease), 0644); err != nil {
		t.Fatal(err)
	}
	orig := osReleasePath
	osReleasePath = path
	t.Cleanup(func() { osReleasePath = orig })

	h := DetectHost()
	if h.Distro != "ubuntu" || h.Family != "debian" || h.Version != "24.04" {
		t.Errorf("DetectHost() = %+v", h)
	}
	if !strings.Contains(h.String(), "Ubuntu 24.04 LTS") {
		t.Errorf("String() = %q", h.String())
	}
}
