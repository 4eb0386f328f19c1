/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/dependency"
	"github.com/max-scopp/ts-flattered/core/emit"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var generateOut string

var generateCmd = &cobra.Command{
	Use:   "generate [file...]",
	Short: "Writes registered files to the output directory",
	Long: `Prints registered files and writes them below the output directory.
Given files, only those and the files they reach through relative imports
are written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("generate called")
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}

		units := p.registry.Units()
		if len(args) > 0 {
			roots := make([]string, 0, len(args))
			for _, arg := range args {
				roots = append(roots, p.key(arg))
			}
			units = nil
			for _, path := range dependency.NewResolver(p.registry).Closure(roots...) {
				unit, _ := p.registry.Get(path)
				units = append(units, unit)
			}
			logger.Info("Generating %d files reachable from %d roots", len(units), len(roots))
		}

		res, err := emit.WriteAll(cmd.Context(), p.outputDir(generateOut), units, emit.Options{
			Print:       tsast.PrintOptions{RemoveComments: p.cfg.Print.RemoveComments},
			Concurrency: p.cfg.Concurrency,
			CompareDisk: true,
		})
		if err != nil {
			return fmt.Errorf("failed to generate: %w", err)
		}
		p.parses.LogStats()
		return res.Err()
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Output directory (default: output from the config)")
	rootCmd.AddCommand(generateCmd)
}
