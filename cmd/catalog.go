package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/khanhnv2901/secheaders/internal/scoring"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the security headers and weights used for scoring",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		return writeCatalog(cmd.OutOrStdout(), appCtx.Catalog, catalogFormat)
	},
}

func writeCatalog(w io.Writer, catalog scoring.Catalog, format string) error {
	switch format {
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "HEADER\tNAME\tWEIGHT\tDESCRIPTION")
		for _, spec := range catalog.Specs() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", spec.Key, spec.DisplayName, spec.Weight, spec.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %d points\n", colorInfo("Max score:"), catalog.MaxScore())
		return nil
	case "json":
		return writeJSON(w, catalog)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(catalog); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (want table, json or yaml)", format)
	}
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFormat, "format", "o", "table", "output format: table, json or yaml")
}
