/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/registry"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var printRemoveComments bool

var printCmd = &cobra.Command{
	Use:   "print <file>",
	Short: "Print a file as ts-flattered sees it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		key := p.key(args[0])
		unit, ok := p.registry.Get(key)
		if !ok {
			return fmt.Errorf("failed to print %s: %w", key, registry.ErrNotRegistered)
		}
		text, err := unit.Print(tsast.PrintOptions{RemoveComments: printRemoveComments || p.cfg.Print.RemoveComments})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	printCmd.Flags().BoolVar(&printRemoveComments, "remove-comments", false, "Drop comments from the output")
	rootCmd.AddCommand(printCmd)
}
