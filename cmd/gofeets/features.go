package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quatrope/gofeets"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the built-in extractors and the features they produce",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := gofeets.NewRegistry()
		for _, entry := range reg.Entries() {
			d := entry.Descriptor
			line := fmt.Sprintf("%s\t%s", d.Name, strings.Join(d.Features, ", "))
			if len(d.Dependencies) > 0 {
				line += fmt.Sprintf("\t(needs %s)", strings.Join(d.Dependencies, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}
