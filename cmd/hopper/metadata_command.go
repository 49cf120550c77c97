package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hopper/internal/logging"
	"hopper/internal/master"
)

func newMetadataCommand(cctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Show the master dataset summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			if _, err := os.Stat(cfg.Paths.MetadataFile); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No master dataset yet; drop files in the watch directory and run `hopper run`")
				return nil
			}

			store, err := master.NewStore(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			meta, err := store.ReadMetadata()
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, meta)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Master file:  %s\n", cfg.Paths.MasterFile)
			fmt.Fprintf(out, "Last updated: %s\n", meta.LastUpdated)
			fmt.Fprintf(out, "Rows:         %d\n", meta.RowCount)
			fmt.Fprintf(out, "Columns:      %d (%s)\n", meta.ColumnCount, strings.Join(meta.Columns, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the summary as JSON")
	return cmd
}
