//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devkit-labs/devkit/internal/manifest"
)

// stubHost is a sandboxed PATH holding a fake "brew" shell script. brew
// install/upgrade NAME writes an executable NAME that prints
// "NAME <version>", where version comes from the NAME.next file.
type stubHost struct {
	Bin string
	Dir string
	Log string
}

const brewStub = `#!/bin/sh
echo "$@" >> "$STUB_LOG"
case "$1" in
install|upgrade)
  if [ -f "$STUB_DIR/$2.fail" ]; then
    echo "Error: $2 cannot be installed" >&2
    exit 1
  fi
  if [ -f "$STUB_DIR/$2.sleep" ]; then
    sleep "$(cat "$STUB_DIR/$2.sleep")"
  fi
  ver=$(cat "$STUB_DIR/$2.next" 2>/dev/null || echo 1.0.0)
  printf '#!/bin/sh\necho "%s %s"\n' "$2" "$ver" > "$STUB_BIN/$2"
  chmod +x "$STUB_BIN/$2"
  ;;
esac
`

// setupStubHost creates the sandbox and puts it first on PATH.
func setupStubHost(t *testing.T) *stubHost {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("integration tests need /bin/sh")
	}

	h := &stubHost{Bin: t.TempDir(), Dir: t.TempDir()}
	h.Log = filepath.Join(h.Dir, "calls.log")

	t.Setenv("PATH", h.Bin+string(os.PathListSeparator)+"/usr/bin"+string(os.PathListSeparator)+"/bin")
	t.Setenv("STUB_BIN", h.Bin)
	t.Setenv("STUB_DIR", h.Dir)
	t.Setenv("STUB_LOG", h.Log)
	t.Setenv("HOME", t.TempDir())

	writeExecutable(t, filepath.Join(h.Bin, "brew"), brewStub)
	return h
}

// installTool puts name on PATH reporting version.
func (h *stubHost) installTool(t *testing.T, name, version string) {
	t.Helper()
	writeExecutable(t, filepath.Join(h.Bin, name), "#!/bin/sh\necho \""+name+" "+version+"\"\n")
}

// nextVersion sets the version brew install/upgrade will leave name at.
func (h *stubHost) nextVersion(t *testing.T, name, version string) {
	t.Helper()
	writeFile(t, filepath.Join(h.Dir, name+".next"), version)
}

// failNext makes brew install/upgrade of name exit 1.
func (h *stubHost) failNext(t *testing.T, name string) {
	t.Helper()
	writeFile(t, filepath.Join(h.Dir, name+".fail"), "")
}

// calls returns the brew invocations so far.
func (h *stubHost) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(h.Log)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading stub log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func brewTool(name string) manifest.ToolDescriptor {
	return manifest.ToolDescriptor{
		Name:     name,
		Binary:   name,
		Category: "development",
		Install:  []manifest.InstallStrategy{manifest.BackendInstall{Backend: manifest.BackendBrew, Package: name}},
		Probe:    manifest.ProbeSpec{Args: []string{"--version"}},
		Update:   manifest.UpdateStrategy{Kind: manifest.UpdateBackend},
	}
}

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
