package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cryoscan/cryoscan/internal/cmd/output"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the file catalog",
	Long: `Index crawls the object store's directory layout and builds the
catalog of projection files. The catalog is persisted locally so later
commands start instantly; use --force to crawl again.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "crawl the store even when a cached catalog exists")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cs, err := newInstance()
	if err != nil {
		return err
	}

	cat, err := cs.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	if indexForce {
		if cat, err = cs.RebuildCatalog(cmd.Context()); err != nil {
			return err
		}
	}

	summary := struct {
		Files       int      `json:"files" yaml:"files"`
		TotalSize   string   `json:"total_size" yaml:"total_size"`
		IceSheets   []string `json:"ice_sheets" yaml:"ice_sheets"`
		Models      int      `json:"models" yaml:"models"`
		Experiments int      `json:"experiments" yaml:"experiments"`
		Variables   int      `json:"variables" yaml:"variables"`
		CacheFile   string   `json:"cache_file" yaml:"cache_file"`
	}{
		Files:       cat.Len(),
		TotalSize:   output.HumanSize(cat.TotalSize()),
		IceSheets:   cat.IceSheets(),
		Models:      len(cat.Models()),
		Experiments: len(cat.Experiments()),
		Variables:   len(cat.Variables()),
		CacheFile:   viper.GetString("cache.catalog_file"),
	}

	format := output.DetectFormat(outputFormat)
	if format == output.FormatTable {
		fmt.Printf("Indexed %d files (%s) across %d models\n",
			summary.Files, summary.TotalSize, summary.Models)
		fmt.Printf("Catalog cached at %s\n", summary.CacheFile)
		return nil
	}
	return output.NewFormatter(format).Format(os.Stdout, summary)
}
