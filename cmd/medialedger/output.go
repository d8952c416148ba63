package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/choplin/medialedger/internal/media"
)

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func invalidFormat(format string) error {
	return fmt.Errorf("invalid format: %s (valid values: table, json, yaml)", format)
}

// outputMedia prints a single version.
func outputMedia(cmd *cobra.Command, m media.Media, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return outputJSON(out, m)
	case "yaml":
		return outputYAML(out, m)
	case "table":
	default:
		return invalidFormat(format)
	}

	fmt.Fprintf(out, "ID:          %d\n", m.ID)
	fmt.Fprintf(out, "MDM ID:      %d\n", m.MdmID)
	fmt.Fprintf(out, "Version:     %d\n", m.Version)
	fmt.Fprintf(out, "Name:        %s\n", m.Name)
	fmt.Fprintf(out, "Owner:       %s\n", m.Owner)
	fmt.Fprintf(out, "State:       %s\n", m.State)
	fmt.Fprintf(out, "Address:     %s\n", m.Address)
	fmt.Fprintf(out, "Region:      %s / %s / %s\n", m.Region, m.SubRegion, m.Locality)
	fmt.Fprintf(out, "Monitors:    %d total, %d working, %d managed\n",
		m.TotalMonitorCount, m.WorkingMonitorCount, m.ManagementMonitorCount)
	fmt.Fprintf(out, "Households:  %d\n", m.HouseholdCount)
	fmt.Fprintf(out, "Resolutions: %s\n", formatResolutions(m.Resolutions))
	fmt.Fprintf(out, "Created At:  %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if m.DeletedAt != nil {
		fmt.Fprintf(out, "Deleted At:  %s\n", m.DeletedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// outputMediaList prints versions as a table or document.
func outputMediaList(cmd *cobra.Command, medias []media.Media, format string, showDeleted bool) error {
	switch format {
	case "json":
		return outputJSON(cmd.OutOrStdout(), medias)
	case "yaml":
		return outputYAML(cmd.OutOrStdout(), medias)
	case "table":
		outputTable(cmd, medias, showDeleted)
		return nil
	default:
		return invalidFormat(format)
	}
}

func formatResolutions(resolutions []media.Resolution) string {
	if len(resolutions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(resolutions))
	for _, r := range resolutions {
		parts = append(parts, r.Spec().String())
	}
	return strings.Join(parts, ", ")
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// columnWidths holds the widths of the free-text columns
type columnWidths struct {
	name         int
	owner        int
	resolutions  int
	useShortDate bool
}

// calculateColumnWidths splits what the fixed columns leave over between the
// free-text ones, preferring the name.
func calculateColumnWidths(termWidth int, medias []media.Media, showDeleted bool) columnWidths {
	numColumns := 8
	if showDeleted {
		numColumns = 9
	}
	available := termWidth - numColumns*3

	// ID, MDM ID, Ver, State are narrow and never wrapped.
	fixed := 6 + 8 + 3 + 10
	created := 19
	useShortDate := false
	if available-fixed-created < 40 {
		created = 11
		useShortDate = true
	}
	fixed += created
	if showDeleted {
		fixed += created
	}

	maxName, maxOwner, maxRes := 4, 5, 11
	for _, m := range medias {
		maxName = max(maxName, runewidth.StringWidth(m.Name))
		maxOwner = max(maxOwner, runewidth.StringWidth(m.Owner))
		maxRes = max(maxRes, runewidth.StringWidth(formatResolutions(m.Resolutions)))
	}

	free := max(available-fixed, 30)
	owner := min(maxOwner, free/4)
	res := min(maxRes, max(free/3, 12))
	name := max(free-owner-res, 10)
	if name > maxName {
		name = maxName
	}

	return columnWidths{
		name:         name,
		owner:        max(owner, 5),
		resolutions:  res,
		useShortDate: useShortDate,
	}
}

func outputTable(cmd *cobra.Command, medias []media.Media, showDeleted bool) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	widths := calculateColumnWidths(getTerminalWidth(), medias, showDeleted)

	// Cells are truncated by hand: go-pretty's WidthMax miscounts wide runes.
	header := table.Row{"ID", "MDM ID", "Ver", "Name", "Owner", "State", "Resolutions", "Created"}
	if showDeleted {
		header = append(header, "Deleted")
	}
	t.AppendHeader(header)

	dateLayout := "2006-01-02 15:04:05"
	if widths.useShortDate {
		dateLayout = "01-02 15:04"
	}

	for _, m := range medias {
		row := table.Row{
			m.ID,
			m.MdmID,
			m.Version,
			runewidth.Truncate(m.Name, widths.name, "..."),
			runewidth.Truncate(m.Owner, widths.owner, "..."),
			string(m.State),
			runewidth.Truncate(formatResolutions(m.Resolutions), widths.resolutions, "..."),
			m.CreatedAt.Local().Format(dateLayout),
		}
		if showDeleted {
			deleted := ""
			if m.DeletedAt != nil {
				deleted = m.DeletedAt.Local().Format(dateLayout)
			}
			row = append(row, deleted)
		}
		t.AppendRow(row)
	}

	t.Render()
}
