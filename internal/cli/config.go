package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devkit-labs/devkit/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write Devkit configuration stored at ~/.devkit/config.yaml.

Keys: yes, timeout, probe_timeout, log_level, manifest, backend, otlp_endpoint.
Each key can also be set in the environment as DEVKIT_<KEY>.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		err := config.Set(key, value)
		switch {
		case errors.Is(err, config.ErrUnknownKey):
			return exitError(1, "unknown config key %q (keys: %s)", key, strings.Join(config.Keys, ", "))
		case errors.Is(err, config.ErrInvalidValue):
			return exitError(1, "%v", err)
		case err != nil:
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}
