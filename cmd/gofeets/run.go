package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quatrope/gofeets"
	"github.com/quatrope/gofeets/engine"
	"github.com/quatrope/gofeets/internal/ctxlog"
	"github.com/quatrope/gofeets/internal/dataset"
	"github.com/quatrope/gofeets/internal/manifest"
)

var runCmd = &cobra.Command{
	Use:   "run <manifest.hcl>",
	Short: "Run an extraction manifest and print the computed features",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(viper.GetString("log_level"), viper.GetString("log_format"), os.Stderr)
		ctx := ctxlog.WithLogger(cmd.Context(), logger)

		m, err := manifest.Load(ctx, args[0])
		if err != nil {
			return err
		}

		dataPath := m.Data
		if !filepath.IsAbs(dataPath) {
			dataPath = filepath.Join(filepath.Dir(args[0]), dataPath)
		}
		data, err := dataset.LoadCSV(dataPath)
		if err != nil {
			return err
		}

		opts := gofeets.Options{
			Data:    data.Channels(),
			Only:    m.Only,
			Exclude: m.Exclude,
			Params:  m.Params,
		}
		if m.OnError == "collect" {
			opts.Policy = engine.CollectErrors
		}
		if m.Workers == 0 {
			opts.Strategy = engine.Sequential{}
		} else {
			opts.Strategy = engine.NewWorkerPool(m.Workers)
		}

		fs, err := gofeets.New(gofeets.NewRegistry(), opts)
		if err != nil {
			return err
		}

		result, report, err := fs.Extract(ctx, data)
		if err != nil {
			return err
		}

		for _, f := range report.Failures {
			logger.Warn("Extractor failed.", "extractor", f.Extractor, "error", f.Err)
		}
		for _, s := range report.Skips {
			logger.Warn("Extractor skipped.", "extractor", s.Extractor, "reason", s.Reason())
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.All())
		}
		for _, name := range result.Names() {
			v, _ := result.Value(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", name, v)
		}
		if !report.OK() {
			return fmt.Errorf("extraction finished with %d failures and %d skips", len(report.Failures), len(report.Skips))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("json", false, "print features as a JSON object")
	rootCmd.AddCommand(runCmd)
}
