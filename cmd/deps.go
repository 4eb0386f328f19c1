/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/registry"
	"github.com/max-scopp/ts-flattered/core/shared"
)

var depsCmd = &cobra.Command{
	Use:   "deps <file>",
	Short: "List the imports of a file",
	Long:  `Lists every import of a file with the target it resolves to.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		key := p.key(args[0])
		if !p.registry.Has(key) {
			return fmt.Errorf("failed to list imports of %s: %w", key, registry.ErrNotRegistered)
		}

		out := cmd.OutOrStdout()
		for _, dep := range p.registry.GetImportDependencies(key) {
			kind := "external"
			target := dep.ModuleSpecifier
			if dep.IsRelative {
				kind = "relative"
				target = dep.ResolvedPath
			}
			fmt.Fprintf(out, "%-8s %s -> %s\n", shared.ToTitle(kind), dep.ModuleSpecifier, target)
		}
		return nil
	},
}

var importersCmd = &cobra.Command{
	Use:   "importers <target>",
	Short: "List the files that import a target",
	Long: `Lists every registered file with an import of target. Target is a
project path such as src/types/common.ts, a partial path such as
types/common, or a package name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		target := args[0]
		if p.registry.Has(p.key(target)) {
			target = p.key(target)
		}
		for _, f := range p.registry.GetFilesThatImport(target) {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(importersCmd)
}
