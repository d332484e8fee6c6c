package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/devkit-labs/devkit/internal/backend"
	"github.com/devkit-labs/devkit/internal/config"
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/platform"
	"github.com/spf13/cobra"
)

var checkManifest string

func init() {
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a manifest file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the host, package manager and manifest",
	Long: `Report the detected operating system, the package manager that installs
will use, which backend-independent installers (go, npm, cargo, pipx) are
available, and whether the manifest loads.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if checkManifest != "" {
			return runManifestCheck(w, checkManifest)
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		runHostCheck(w, a)
		runDriverCheck(w, a.runner)
		runConfigCheck(w)
		fmt.Fprintln(w, "Manifest check:")
		source := "built-in"
		if p := config.ManifestPath(); p != "" {
			source = p
		}
		fmt.Fprintf(w, "  [ OK ] %d tools in %d categories (%s)\n", a.manifest.Len(), len(a.manifest.Categories()), source)
		return nil
	},
}

func runHostCheck(w io.Writer, a *app) {
	fmt.Fprintln(w, "Host check:")
	fmt.Fprintf(w, "  [ OK ] %s\n", platform.DetectHost())

	kind := a.resolver.Resolve()
	if kind == manifest.BackendNone {
		fmt.Fprintln(w, "  [WARN] no supported package manager found (brew, apt-get, dnf, yum, pacman, zypper)")
		return
	}
	path, _ := a.runner.LookPath(backend.MarkerFor(kind))
	fmt.Fprintf(w, "  [ OK ] package manager: %s (%s)\n", kind, path)
	if kind != manifest.BackendBrew && !platform.IsRoot() {
		if _, err := a.runner.LookPath("sudo"); err != nil {
			fmt.Fprintf(w, "  [WARN] %s needs root but sudo was not found\n", kind)
		}
	}
}

func runDriverCheck(w io.Writer, runner platform.Runner) {
	fmt.Fprintln(w, "Installer check:")
	for _, drv := range manifest.Drivers {
		path, err := runner.LookPath(drv.Executable())
		if err != nil {
			fmt.Fprintf(w, "  [MISS] %s not found\n", drv.Executable())
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s found at %s\n", drv.Executable(), path)
	}
}

func runConfigCheck(w io.Writer) {
	fmt.Fprintln(w, "Config check:")
	path := config.FilePath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "  [INFO] no config file at %s (defaults in use)\n", path)
	} else {
		fmt.Fprintf(w, "  [ OK ] %s\n", path)
	}
	fmt.Fprintf(w, "  [ OK ] timeout %s, probe timeout %s\n", config.Timeout(), config.ProbeTimeout())
}

func runManifestCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return exitError(1, "manifest validation failed: %v", err)
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  [FAIL] %s\n", issue)
		}
		return exitError(1, "manifest %s has %d schema issue(s)", path, len(result.Issues))
	}

	m, err := manifest.ParseFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return exitError(1, "manifest validation failed")
	}
	fmt.Fprintf(w, "  [ OK ] valid manifest: %d tools\n", m.Len())
	return nil
}
