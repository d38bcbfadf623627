// Package cmd provides the CLI commands for caseplot.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"caseplot/internal/config"
	"caseplot/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "caseplot",
	Short: "Aggregate and compare per-area case-count series",
	Long: `caseplot reads the delimited case-count tables (confirmed, deaths,
recovered per country/region), aggregates them into per-area series and
emits plot-ready data.

Examples:
  caseplot plot Switzerland Italy
  caseplot plot --compare --logarithmic Switzerland Italy Germany
  caseplot plot --per-capita Switzerland
  caseplot countries`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON or HCL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("caseplot version 0.1.0")
	},
}
