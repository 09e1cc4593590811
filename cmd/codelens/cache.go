package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens-ai/codelens/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the completion cache",
	}
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [dir]",
		Short: "Show cache entry count and size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openProjectCache(cmd, args)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Entries: %d\nSize:    %.1f KiB\n", stats.Entries, float64(stats.Bytes)/1024)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [dir]",
		Short: "Delete all cached completions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openProjectCache(cmd, args)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("Cache cleared.")
			return nil
		},
	}
}

func openProjectCache(cmd *cobra.Command, args []string) (*cache.Cache, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	cfg, log, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return openCache(cfg, dir, log)
}
