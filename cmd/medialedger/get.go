package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a version by its row id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			uc, closeDB, err := openMedia()
			if err != nil {
				return err
			}
			defer closeDB()

			m, err := uc.Get(context.Background(), id)
			if err != nil {
				return err
			}
			return outputMedia(cmd, m, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml")

	return cmd
}
