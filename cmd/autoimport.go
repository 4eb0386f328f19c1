/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/registry"
	"github.com/max-scopp/ts-flattered/core/symbols"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var autoImportCode string

var autoImportCmd = &cobra.Command{
	Use:   "autoimport <file>",
	Short: "Add imports for symbols a file uses but does not import",
	Long: `Guesses the symbols used by a file, or by --code, and adds imports for
those exported by registered files or by the external dependencies in the
config. The updated file is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		key := p.key(args[0])
		unit, ok := p.registry.Get(key)
		if !ok {
			return fmt.Errorf("failed to auto-import into %s: %w", key, registry.ErrNotRegistered)
		}

		code := autoImportCode
		if code == "" {
			if code, err = unit.Print(tsast.PrintOptions{RemoveComments: true}); err != nil {
				return err
			}
		}
		added, err := p.registry.AutoImport(key, code, symbols.Capitalized{})
		if err != nil {
			return err
		}
		if len(added) > 0 {
			cmd.PrintErrf("Imported %s\n", strings.Join(added, ", "))
		}

		text, err := unit.Print(tsast.PrintOptions{})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	autoImportCmd.Flags().StringVar(&autoImportCode, "code", "", "Code to scan instead of the file itself")
	rootCmd.AddCommand(autoImportCmd)
}
