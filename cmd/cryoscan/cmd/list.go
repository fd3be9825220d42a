package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cryoscan/cryoscan/internal/cmd/output"
	"github.com/cryoscan/cryoscan/pkg/catalog"
)

var listFilter catalog.Filter

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Long: `List shows the files in the catalog, optionally narrowed to one
ice sheet, model, experiment, or variable. The catalog is built on
first use.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFilter.IceSheet, "ice-sheet", "", "filter by ice sheet (AIS, GIS)")
	listCmd.Flags().StringVar(&listFilter.Institution, "institution", "", "filter by institution")
	listCmd.Flags().StringVar(&listFilter.Model, "model", "", "filter by model (institution/name)")
	listCmd.Flags().StringVar(&listFilter.Experiment, "experiment", "", "filter by experiment")
	listCmd.Flags().StringVar(&listFilter.Variable, "variable", "", "filter by variable")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cs, err := newInstance()
	if err != nil {
		return err
	}

	cat, err := cs.Catalog(cmd.Context())
	if err != nil {
		return err
	}

	records := cat.Select(listFilter).Records()
	format := output.DetectFormat(outputFormat)
	return output.NewFormatter(format).Format(os.Stdout, records)
}
