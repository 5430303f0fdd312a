package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/config"
)

var locateCmd = &cobra.Command{
	Use:   "locate [path]",
	Short: "Print the feature directory that path belongs to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunLocate(cmd.OutOrStdout(), settings, firstArg(args))
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func RunLocate(w io.Writer, cfg config.Config, path string) error {
	dir, err := featureDir(path, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, dir)
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
