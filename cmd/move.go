/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/builder"
	"github.com/max-scopp/ts-flattered/core/emit"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/models"
	"github.com/max-scopp/ts-flattered/core/registry"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var (
	moveWrite          bool
	moveRewriteInbound bool
	moveOut            string
)

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a directory and rewrite relative imports",
	Long: `Moves every file under <from> to the same place under <to> and rewrites
relative imports so they keep their targets. Without --write the plan is
only printed. With --write the affected files are written below --out.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		from, to := p.key(args[0]), p.key(args[1])

		report, err := p.registry.Move(from, to, registry.MoveOptions{RewriteInbound: moveRewriteInbound})
		if err != nil {
			return err
		}
		printReport(cmd, report)
		if !moveWrite {
			return nil
		}

		res, err := emit.WriteAll(cmd.Context(), p.outputDir(moveOut), affected(p.registry, report), emit.Options{
			Print:       tsast.PrintOptions{RemoveComments: p.cfg.Print.RemoveComments},
			Concurrency: p.cfg.Concurrency,
		})
		if err != nil {
			return err
		}
		return res.Err()
	},
}

func printReport(cmd *cobra.Command, report *models.MoveReport) {
	out := cmd.OutOrStdout()
	if report.Empty() {
		logger.Info("Nothing to move under %s", report.FromBase)
		return
	}
	for _, m := range report.Moved {
		fmt.Fprintf(out, "move    %s -> %s\n", m.From, m.To)
	}
	for _, r := range report.Rewrites {
		fmt.Fprintf(out, "rewrite %s: %q -> %q\n", r.FilePath, r.From, r.To)
	}
}

// affected returns the units a move changed, in path order.
func affected(reg *registry.Registry, report *models.MoveReport) []*builder.SourceFile {
	seen := make(map[string]bool)
	var paths []string
	for _, m := range report.Moved {
		if !seen[m.To] {
			seen[m.To] = true
			paths = append(paths, m.To)
		}
	}
	for _, r := range report.Rewrites {
		if !seen[r.FilePath] {
			seen[r.FilePath] = true
			paths = append(paths, r.FilePath)
		}
	}
	units := make([]*builder.SourceFile, 0, len(paths))
	for _, path := range paths {
		if unit, ok := reg.Get(path); ok {
			units = append(units, unit)
		}
	}
	return units
}

func init() {
	moveCmd.Flags().BoolVar(&moveWrite, "write", false, "Write the affected files")
	moveCmd.Flags().BoolVar(&moveRewriteInbound, "rewrite-inbound", false, "Also rewrite imports into the moved directory from files outside it")
	moveCmd.Flags().StringVar(&moveOut, "out", "", "Output directory (default: output from the config)")
	rootCmd.AddCommand(moveCmd)
}
