package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an asset, or show its current version if it already has one",
		Long: `Create reads a payload (YAML, or JSON for *.json files) and stores it as a new
version unless the asset already has an active current version, in which case
that version is printed unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, closeDB, err := openMedia()
			if err != nil {
				return err
			}
			defer closeDB()

			m, err := uc.CreateFromFile(context.Background(), file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return outputMedia(cmd, m, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Payload file, - for stdin")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml")

	return cmd
}
