package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/magicshell/internal/config"
)

func newConfigCmd(f *flags) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings",
		Long: `Print the settings a session would start with: the defaults, then the
settings file, then MAGICSHELL_* environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			f.options(cmd).Configure(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			data, err := cfg.Encode(format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "toml", "output format (toml or yaml)")
	return c
}
