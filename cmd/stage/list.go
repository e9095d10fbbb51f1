package main

import (
	"fmt"
	"io"

	"GopherStage/internal/config"
	"GopherStage/internal/examples"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the examples by group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printListing(cmd.OutOrStdout(), examples.Default())
		},
	}
}

func printListing(w io.Writer, reg *examples.Registry) error {
	for _, l := range reg.Grouped() {
		if _, err := fmt.Fprintf(w, "%s\n", l.Group.Title); err != nil {
			return err
		}
		for _, ex := range l.Examples {
			if _, err := fmt.Fprintf(w, "  %-32s %s\n", ex.Name, ex.DisplayName); err != nil {
				return err
			}
		}
	}
	return nil
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if save {
				if err := config.Save(opts.configPath, cfg); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also write the effective configuration to the config file")
	return cmd
}
