package cmd

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/config"
	"github.com/chriserin/stepjump/internal/ui"
)

var defsCmd = &cobra.Command{
	Use:   "defs [path]",
	Short: "List the registered step definitions in match order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunDefs(cmd.Context(), cmd.OutOrStdout(), settings, firstArg(args))
	},
}

func init() {
	rootCmd.AddCommand(defsCmd)
}

func RunDefs(ctx context.Context, w io.Writer, cfg config.Config, path string) error {
	dir, err := featureDir(path, cfg)
	if err != nil {
		return err
	}
	loader, closeStore := newLoader(ctx, cfg)
	defer closeStore()

	reg, err := loader.Load(ctx, filepath.Join(dir, cfg.StepsDir))
	if err != nil {
		return err
	}
	for _, e := range reg.Entries() {
		ui.StepRow(w, e.Location())
	}
	ui.SummaryLine(w, reg.Len(), "definition")
	return nil
}
