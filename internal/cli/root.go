package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devkit-labs/devkit/internal/branding"
	"github.com/devkit-labs/devkit/internal/config"
	"github.com/devkit-labs/devkit/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	outputFormat string
	manifestFlag string
	verbose      bool
	noColor      bool
	timeoutFlag  time.Duration
	backendFlag  string
)

// shutdownTelemetry flushes spans once the command has finished.
var shutdownTelemetry telemetry.ShutdownFunc = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps a declared set of developer tools installed and current.
It detects the host package manager, probes each tool's version, and installs
or updates tools one at a time, falling back through each tool's install chain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		bindFlags(cmd)
		if err := checkFormat(outputFormat); err != nil {
			return err
		}

		shutdown, err := telemetry.Setup(cmd.Context(), config.OTLPEndpoint())
		if err != nil {
			// Tracing stays off when the exporter cannot be built.
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: tracing disabled: %v\n", err)
			return nil
		}
		shutdownTelemetry = shutdown
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&outputFormat, "output", "o", formatText, "Output format (text, json, yaml)")
	pf.StringVar(&manifestFlag, "manifest", "", "Path to a tools manifest to use instead of the built-in one")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.DurationVar(&timeoutFlag, "timeout", config.DefaultTimeout, "Timeout for each install or update command")
	pf.StringVar(&backendFlag, "backend", "", "Force a package manager (brew, apt, dnf, yum, pacman, zypper, none)")
}

// bindFlags lets explicitly set flags override config file and environment.
func bindFlags(cmd *cobra.Command) {
	flags := map[string]string{
		"manifest": config.KeyManifest,
		"timeout":  config.KeyTimeout,
		"backend":  config.KeyBackend,
	}
	for flag, key := range flags {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			viper.Set(key, f.Value.String())
		}
	}
}

// Execute runs the root command with build info injected via ldflags.
// SIGINT and SIGTERM cancel the command's context so a batch stops before
// its next tool.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = shutdownTelemetry(flushCtx)
	return err
}
