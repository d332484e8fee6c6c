package manifest

import "fmt"

// Backend identifies a host package manager.
type Backend string

// Supported backends. BackendNone means no package manager was found.
const (
	BackendBrew   Backend = "brew"
	BackendApt    Backend = "apt"
	BackendDnf    Backend = "dnf"
	BackendYum    Backend = "yum"
	BackendPacman Backend = "pacman"
	BackendZypper Backend = "zypper"
	BackendNone   Backend = "none"
)

// Backends lists every real backend in resolution priority order: the
// cross-platform manager first, then OS-native managers.
var Backends = []Backend{
	BackendBrew,
	BackendApt,
	BackendDnf,
	BackendYum,
	BackendPacman,
	BackendZypper,
}

// ParseBackend returns the Backend named s. "none" is accepted.
func ParseBackend(s string) (Backend, bool) {
	if Backend(s) == BackendNone {
		return BackendNone, true
	}
	for _, b := range Backends {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// Driver is a backend-agnostic installer that is usable whenever its
// executable is on PATH.
type Driver string

// Supported drivers.
const (
	DriverGo     Driver = "go"
	DriverNpm    Driver = "npm"
	DriverCargo  Driver = "cargo"
	DriverPipx   Driver = "pipx"
	DriverScript Driver = "script"
)

// Drivers lists every supported driver.
var Drivers = []Driver{DriverGo, DriverNpm, DriverCargo, DriverPipx, DriverScript}

// ParseDriver returns the Driver named s.
func ParseDriver(s string) (Driver, bool) {
	for _, d := range Drivers {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Executable returns the program that must be on PATH for the driver to apply.
// Scripts are fetched over HTTP and piped to sh.
func (d Driver) Executable() string {
	if d == DriverScript {
		return "sh"
	}
	return string(d)
}

// InstallStrategy is one entry of a tool's install chain. The concrete type
// is one of BackendInstall, CommandInstall, or ManualInstall.
type InstallStrategy interface {
	fmt.Stringer
	isInstallStrategy()
}

// BackendInstall installs Package through a specific backend.
type BackendInstall struct {
	Backend Backend
	Package string
}

// CommandInstall installs through a language toolchain or remote script.
// Target is the package argument for go/npm/cargo/pipx and a URL for script.
type CommandInstall struct {
	Driver Driver
	Target string
}

// ManualInstall is the terminal fallback: a human follows URL.
type ManualInstall struct {
	URL string
}

func (BackendInstall) isInstallStrategy() {}
func (CommandInstall) isInstallStrategy() {}
func (ManualInstall) isInstallStrategy() {}

func (s BackendInstall) String() string { return string(s.Backend) + ":" + s.Package }
func (s CommandInstall) String() string { return string(s.Driver) + ":" + s.Target }
func (s ManualInstall) String() string { return "manual:" + s.URL }

// UpdateKind selects how a tool is updated.
type UpdateKind string

// Update strategies.
const (
	// UpdateChain re-runs the install chain.
	UpdateChain UpdateKind = "chain"
	// UpdateBackend calls the resolved backend's upgrade for the tool's package.
	UpdateBackend UpdateKind = "backend"
	// UpdateRoutine runs a named multi-step routine.
	UpdateRoutine UpdateKind = "routine"
)

// Named update routines.
const (
	RoutineRustup       = "rustup"
	RoutineUv           = "uv"
	RoutineGcloud       = "gcloud"
	RoutineNpmGlobal    = "npm-global"
	RoutineRemoteScript = "remote-script"
	RoutineExec         = "exec"
)

// Routines lists every routine name accepted in a manifest.
var Routines = []string{
	RoutineRustup,
	RoutineUv,
	RoutineGcloud,
	RoutineNpmGlobal,
	RoutineRemoteScript,
	RoutineExec,
}

// UpdateStrategy describes how to update an installed tool.
type UpdateStrategy struct {
	Kind    UpdateKind
	Routine string
	// URL is the script location for remote-script.
	URL string
	// Args is the argv for exec, or the package name for npm-global.
	Args []string
}

func (u UpdateStrategy) String() string {
	if u.Kind == UpdateRoutine {
		return "routine:" + u.Routine
	}
	return string(u.Kind)
}

// ProbeSpec is the version-check invocation, run as Binary Args...
type ProbeSpec struct {
	Args []string
}

// ToolDescriptor is everything known about one tool.
type ToolDescriptor struct {
	Name        string
	Binary      string
	Description string
	Category    string
	Subcategory string
	Homepage    string
	Install     []InstallStrategy
	Probe       ProbeSpec
	Update      UpdateStrategy
}

// Tag returns "category:subcategory", or just the category when there is
// no subcategory.
func (d ToolDescriptor) Tag() string {
	if d.Subcategory == "" {
		return d.Category
	}
	return d.Category + ":" + d.Subcategory
}

// ManualURL returns the URL of the manual fallback entry, if the chain has one.
func (d ToolDescriptor) ManualURL() (string, bool) {
	for _, s := range d.Install {
		if m, ok := s.(ManualInstall); ok {
			return m.URL, true
		}
	}
	return "", false
}

// PackageFor returns the package name the chain declares for backend b.
func (d ToolDescriptor) PackageFor(b Backend) (string, bool) {
	for _, s := range d.Install {
		if bi, ok := s.(BackendInstall); ok && bi.Backend == b {
			return bi.Package, true
		}
	}
	return "", false
}
