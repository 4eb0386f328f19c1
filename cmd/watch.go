/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/max-scopp/ts-flattered/core/cache"
	"github.com/max-scopp/ts-flattered/core/emit"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/tsast"
	"github.com/max-scopp/ts-flattered/core/watcher"
)

var watchEmit bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the registry in sync with the project on disk",
	Long: `Watches the project root and re-registers files as they change. With
--emit every change also rewrites the output files whose content changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := loadProject(ctx)
		if err != nil {
			return err
		}

		fw, err := watcher.NewFileWatcher(p.root, p.walker)
		if err != nil {
			return err
		}
		defer fw.Close()

		gens := cache.NewGenerationCache()
		generate := func() error {
			if !watchEmit {
				return nil
			}
			res, err := emit.WriteAll(ctx, p.outputDir(""), p.registry.Units(), emit.Options{
				Print:       tsast.PrintOptions{RemoveComments: p.cfg.Print.RemoveComments},
				Concurrency: p.cfg.Concurrency,
				Generations: gens,
				CompareDisk: true,
			})
			if err != nil {
				return err
			}
			return res.Err()
		}
		syncRegistry := watcher.SyncRegistry(ctx, p.root, p.registry, p.parses)

		fw.OnStart = func() error {
			logger.Info("Watching %s (%d files)", p.root, p.registry.Len())
			return generate()
		}
		fw.OnChange = func(changes []watcher.Change) error {
			syncErr := syncRegistry(changes)
			if err := generate(); err != nil {
				return err
			}
			return syncErr
		}
		fw.OnClose = func() error {
			p.parses.LogStats()
			return nil
		}

		return fw.Watch(ctx)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchEmit, "emit", false, "Write changed output files after every change")
	rootCmd.AddCommand(watchCmd)
}
