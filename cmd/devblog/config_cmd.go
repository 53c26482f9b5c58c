package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-devblog/internal/runtimeconfig"
)

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runtimeconfig.Write(cmd.OutOrStdout(), cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := runtimeconfig.Load(flags.configPath)
			if err != nil {
				return err
			}
			if loaded.Path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(defaults, no config file)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), loaded.Path)
			return nil
		},
	})

	return cmd
}
