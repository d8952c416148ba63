package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the current version of every asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, closeDB, err := openMedia()
			if err != nil {
				return err
			}
			defer closeDB()

			medias, err := uc.List(context.Background())
			if err != nil {
				return err
			}
			return outputMediaList(cmd, medias, format, false)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml")

	return cmd
}
