package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"adapterd/internal/registry"
)

func newAdaptersCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "adapters",
		Short: "List adapter checkpoints found in the adapters directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg.AdaptersDir == "" {
				return fmt.Errorf("no adapters directory: set --adapters-dir or adapters_dir")
			}
			cps, err := registry.LoadDir(cfg.AdaptersDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cps)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSIZE_MB\tPATH")
			for _, cp := range cps {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", cp.ID, cp.SizeMB, cp.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
