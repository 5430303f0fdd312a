package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/navigate"
	"github.com/chriserin/stepjump/internal/pyscan"
	"github.com/chriserin/stepjump/internal/ui"
)

var decoratorsLine int

var decoratorsCmd = &cobra.Command{
	Use:   "decorators <file.py>",
	Short: "List the step decorators of a Python module",
	Long: `List the step decorators of a Python module in source order.

With --line only the decorator governing that line is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunDecorators(cmd.Context(), cmd.OutOrStdout(), args[0], decoratorsLine)
	},
}

func init() {
	decoratorsCmd.Flags().IntVarP(&decoratorsLine, "line", "l", 0, "1-based line; print only its governing decorator")
	rootCmd.AddCommand(decoratorsCmd)
}

func RunDecorators(ctx context.Context, w io.Writer, path string, line int) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	locs, err := pyscan.Scan(ctx, src)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for i := range locs {
		locs[i].File = path
	}

	if line > 0 {
		loc, ok := pyscan.LatestBefore(locs, line)
		if !ok {
			return fmt.Errorf("%s:%d: %w", path, line, navigate.ErrNoDecorator)
		}
		ui.StepRow(w, loc)
		return nil
	}
	for _, loc := range locs {
		ui.StepRow(w, loc)
	}
	ui.SummaryLine(w, len(locs), "decorator")
	return nil
}
