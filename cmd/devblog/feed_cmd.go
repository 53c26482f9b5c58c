package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func feedCmd(flags *globalFlags) *cobra.Command {
	var (
		atom    bool
		sitemap bool
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the RSS feed (or Atom feed, or sitemap)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if atom && sitemap {
				return fmt.Errorf("--atom and --sitemap are mutually exclusive")
			}
			module, err := flags.loadModule(cmd)
			if err != nil {
				return err
			}

			gen := module.Generator()
			var body string
			switch {
			case atom:
				body, err = gen.Atom(cmd.Context())
			case sitemap:
				body, err = gen.Sitemap(cmd.Context())
			default:
				body, err = gen.RSS(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().BoolVar(&atom, "atom", false, "print the Atom feed")
	cmd.Flags().BoolVar(&sitemap, "sitemap", false, "print sitemap.xml")
	return cmd
}
