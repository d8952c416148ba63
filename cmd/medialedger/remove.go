package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	var (
		mdmID int64
		force bool
	)

	cmd := &cobra.Command{
		Use:   "remove [id]",
		Short: "Soft-delete a version",
		Long: `Remove marks a single version row as deleted. Pass the row id, or --mdm-id to
remove whatever version of the asset is current. No new version is created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byMdmID := cmd.Flags().Changed("mdm-id")
			if byMdmID == (len(args) == 1) {
				return fmt.Errorf("pass either a row id or --mdm-id")
			}

			var id int64
			if !byMdmID {
				var err error
				id, err = strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid id %q", args[0])
				}
			}

			// Confirmation prompt
			if !force {
				message := fmt.Sprintf("Remove media %d? (y/N) ", id)
				if byMdmID {
					message = fmt.Sprintf("Remove the current version of mdm id %d? (y/N) ", mdmID)
				}

				reader := bufio.NewReader(cmd.InOrStdin())
				fmt.Fprint(cmd.ErrOrStderr(), message)
				answer, err := reader.ReadString('\n')
				if err != nil {
					return err
				}

				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Removal cancelled")
					return nil
				}
			}

			uc, closeDB, err := openMedia()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()

			if byMdmID {
				removed, err := uc.RemoveCurrent(ctx, mdmID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed version %d of mdm id %d (id %d)\n", removed.Version, removed.MdmID, removed.ID)
				return nil
			}

			if err := uc.Remove(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed media %d\n", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&mdmID, "mdm-id", 0, "Remove the current version of this asset")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
