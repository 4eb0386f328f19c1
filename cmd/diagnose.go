/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/diagnostics"
	"github.com/max-scopp/ts-flattered/core/logger"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <file>...",
	Short: "Report syntax errors",
	Long:  `Parses each file and prints its syntax errors as file:line:column: message.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		total := 0
		for _, arg := range args {
			data, err := os.ReadFile(arg)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", arg, err)
			}
			diags, err := diagnostics.Diagnose(cmd.Context(), filepath.ToSlash(arg), string(data), nil)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), diagnostics.Format(diags))
			total += len(diags)
		}
		if total > 0 {
			return fmt.Errorf("found %d syntax errors", total)
		}
		logger.Info("No syntax errors in %d files", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}
