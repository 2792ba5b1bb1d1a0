package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/harness-provisioner/internal/clierror"
	"github.com/blackwell-systems/harness-provisioner/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration resolved from flags, HARNESS_* environment
variables, the config file and defaults. The API key is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := config.Display()
			if err != nil {
				return clierror.NewValidationError(err.Error(), "Check flags, HARNESS_* environment variables and the config file.")
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.AddCommand(newConfigSaveCmd())
	return cmd
}

func newConfigSaveCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration to the config file",
		Long: `Write the effective configuration to the config file read on startup
($HOME/.harness-provisioner/config.yaml unless --path is given).

The API key is never written. Pass it with --api-key or HARNESS_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return clierror.NewValidationError(err.Error(), "Check flags, HARNESS_* environment variables and the config file.")
			}

			if path == "" {
				if path, err = config.DefaultConfigPath(); err != nil {
					return clierror.NewOperationError("cannot locate home directory", err)
				}
			}
			if err := config.Save(cfg, path); err != nil {
				return clierror.NewOperationError(err.Error(), err)
			}

			out := newPrinter(cmd)
			out.success("Configuration written to %s", path)
			if cfg.APIKey != "" {
				out.warn("API key not saved, set HARNESS_API_KEY instead")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "File to write (default $HOME/.harness-provisioner/config.yaml)")
	return cmd
}
