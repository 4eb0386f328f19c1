/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of ts-flattered",
	Long:  `Displays the version of ts-flattered.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ts-flattered %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
