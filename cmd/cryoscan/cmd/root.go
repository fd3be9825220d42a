// Package cmd implements the cryoscan command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cryoscan/cryoscan"
	"github.com/cryoscan/cryoscan/internal/cmd/output"
	"github.com/cryoscan/cryoscan/internal/config"
	"github.com/cryoscan/cryoscan/pkg/logging"
	"github.com/cryoscan/cryoscan/pkg/store"
)

var (
	configFile   string
	verbose      bool
	quiet        bool
	outputFormat string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cryoscan",
	Short: "Ice sheet model output catalog",
	Long: `Cryoscan indexes ice sheet model projections published as NetCDF
files in a cloud object store and loads them for comparison.

It crawls the store's directory layout into a queryable catalog, caches
the catalog locally, and can load a variable across many model runs at
once with a shared color range.`,
	PersistentPreRunE: setupCommand,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.cryoscan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json, or yaml")

	rootCmd.PersistentFlags().String("bucket", cryoscan.DefaultBucket, "object store bucket to index")
	rootCmd.PersistentFlags().String("catalog-cache", "", "path of the persisted catalog file")

	for flag, key := range map[string]string{
		"verbose":       "verbose",
		"quiet":         "quiet",
		"bucket":        "store.bucket",
		"catalog-cache": "cache.catalog_file",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cryoscan")
	}

	// .env files load before Viper env binding.
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	config.SetDefaults()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	if _, err := output.ParseFormat(outputFormat); err != nil {
		return err
	}
	return nil
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if quiet || viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	zerolog.SetGlobalLevel(level)
	if os.Getenv("LOG_FORMAT") == "json" {
		logging.SetDefault(logging.NewJSON(os.Stderr))
	} else {
		logging.SetDefault(logging.NewConsole())
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}

// newInstance assembles a Cryoscan handle from the resolved config.
func newInstance() (cryoscan.Cryoscan, error) {
	settings := config.Load()

	var storeOpts []store.GCSOption
	if settings.Store.Endpoint != "" {
		storeOpts = append(storeOpts, store.WithEndpoint(settings.Store.Endpoint))
	}
	gcs := store.NewGCS(settings.Store.Bucket, storeOpts...)

	opts := []cryoscan.Option{
		cryoscan.WithStore(gcs, settings.Store.Bucket, settings.Store.Scheme),
		cryoscan.WithCatalogCache(settings.Cache.CatalogFile),
		cryoscan.WithSentinels(settings.Load.Sentinels...),
		cryoscan.WithPercentiles(settings.Aggregate.PercentileLow, settings.Aggregate.PercentileHigh),
	}
	if settings.Cache.Datasets.Enabled {
		opts = append(opts, cryoscan.WithDecodeCache(settings.Cache.Datasets.MaxItems))
	} else {
		opts = append(opts, cryoscan.WithoutDecodeCache())
	}

	return cryoscan.New(opts...)
}
