/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ts-flattered",
	Short: "Inspect and restructure TypeScript projects.",
	Long: `ts-flattered loads the TypeScript files of a project into a dependency
registry. It moves directories while keeping every relative import pointed
at its target, adds missing imports and prints or writes the result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

var logfile string
var verbose bool
var configPath string

var logFile *os.File

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogging() error {
	logger.SetVerbose(verbose)
	if logfile == "" {
		return nil
	}
	f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logfile, err)
	}
	logFile = f
	logger.AddWriterForAll(f)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to ts-flattered.yaml (default: ./ts-flattered.yaml)")
}
