package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choplin/medialedger/internal/media"
)

func newUpdateCmd() *cobra.Command {
	var (
		file        string
		format      string
		mdmID       int64
		name        string
		owner       string
		state       string
		address     string
		region      string
		subRegion   string
		locality    string
		total       int64
		working     int64
		management  int64
		households  int64
		resolutions []string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Store a new version of an asset",
		Long: `Update derives a new version from the asset's current version. Every field
that is not given is inherited, resolutions included.

Pass a payload with --file, or the fields as flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, closeDB, err := openMedia()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()

			if cmd.Flags().Changed("file") {
				m, err := uc.UpdateFromFile(ctx, file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				return outputMedia(cmd, m, format)
			}

			if !cmd.Flags().Changed("mdm-id") {
				return fmt.Errorf("either --file or --mdm-id is required")
			}

			in := media.UpdateInput{MdmID: &mdmID}
			flags := cmd.Flags()
			setString := func(flag string, dst **string, v *string) {
				if flags.Changed(flag) {
					*dst = v
				}
			}
			setInt := func(flag string, dst **int64, v *int64) {
				if flags.Changed(flag) {
					*dst = v
				}
			}
			setString("name", &in.Name, &name)
			setString("owner", &in.Owner, &owner)
			setString("address", &in.Address, &address)
			setString("region", &in.Region, &region)
			setString("sub-region", &in.SubRegion, &subRegion)
			setString("locality", &in.Locality, &locality)
			setInt("total-monitors", &in.TotalMonitorCount, &total)
			setInt("working-monitors", &in.WorkingMonitorCount, &working)
			setInt("managed-monitors", &in.ManagementMonitorCount, &management)
			setInt("households", &in.HouseholdCount, &households)

			if flags.Changed("state") {
				st, err := media.ParseState(state)
				if err != nil {
					return err
				}
				in.State = &st
			}
			if flags.Changed("resolution") {
				in.Resolutions = make([]media.ResolutionSpec, 0, len(resolutions))
				for _, raw := range resolutions {
					spec, err := media.ParseResolutionSpec(raw)
					if err != nil {
						return err
					}
					in.Resolutions = append(in.Resolutions, spec)
				}
			}

			m, err := uc.Update(ctx, in)
			if err != nil {
				return err
			}
			return outputMedia(cmd, m, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Payload file, - for stdin")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml")
	cmd.Flags().Int64Var(&mdmID, "mdm-id", 0, "External id of the asset")
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner")
	cmd.Flags().StringVar(&state, "state", "", "State: installing, operating, suspended, broken or retired")
	cmd.Flags().StringVar(&address, "address", "", "Street address")
	cmd.Flags().StringVar(&region, "region", "", "Region")
	cmd.Flags().StringVar(&subRegion, "sub-region", "", "Sub-region")
	cmd.Flags().StringVar(&locality, "locality", "", "Locality")
	cmd.Flags().Int64Var(&total, "total-monitors", 0, "Total monitor count")
	cmd.Flags().Int64Var(&working, "working-monitors", 0, "Working monitor count")
	cmd.Flags().Int64Var(&management, "managed-monitors", 0, "Monitors under management")
	cmd.Flags().Int64Var(&households, "households", 0, "Household count")
	cmd.Flags().StringSliceVar(&resolutions, "resolution", nil, "Resolution as WIDTHxHEIGHT@PPI; repeat to replace the whole set")
	cmd.MarkFlagsMutuallyExclusive("file", "mdm-id")

	return cmd
}
