// Package cmd - countries command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"caseplot/core/loader"
	"caseplot/internal/config"
)

// countriesCmd lists the available country/region labels
var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List available countries/regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		areas, err := loader.ListAreas(config.Get().Data.DailyDir)
		if err != nil {
			return err
		}
		for _, area := range areas {
			fmt.Fprintln(cmd.OutOrStdout(), area)
		}
		return nil
	},
}
