package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/config"
	"github.com/chriserin/stepjump/internal/db"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the step definition cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every cached step module",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCacheClear(cmd.OutOrStdout(), settings)
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache database location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), settings.Cache.Path)
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

func RunCacheClear(w io.Writer, cfg config.Config) error {
	if _, err := os.Stat(cfg.Cache.Path); os.IsNotExist(err) {
		fmt.Fprintln(w, "no cache at "+cfg.Cache.Path)
		return nil
	}
	store, err := db.OpenCache(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear()
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintf(w, "cleared %d cached files\n", n)
	return nil
}
