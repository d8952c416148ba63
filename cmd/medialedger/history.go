package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		format    string
		exportDir string
	)

	cmd := &cobra.Command{
		Use:   "history <mdm-id>",
		Short: "Show every version of an asset, removed ones included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mdmID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid mdm id %q", args[0])
			}

			uc, closeDB, err := openMedia()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()

			if exportDir != "" {
				files, err := uc.Export(ctx, mdmID, exportDir)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(cmd.OutOrStdout(), "v%d  %s  sha256:%s\n", f.Version, f.Path, f.Hash)
				}
				return nil
			}

			versions, err := uc.History(ctx, mdmID)
			if err != nil {
				return err
			}
			return outputMediaList(cmd, versions, format, true)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml")
	cmd.Flags().StringVar(&exportDir, "export", "", "Write each version as a YAML snapshot under this directory")

	return cmd
}
