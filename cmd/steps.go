package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/config"
	"github.com/chriserin/stepjump/internal/step"
	"github.com/chriserin/stepjump/internal/ui"
)

var (
	stepsKind string
	stepsTag  string
)

var stepsCmd = &cobra.Command{
	Use:   "steps [path]",
	Short: "List every step of the feature files under the feature directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSteps(cmd.Context(), cmd.OutOrStdout(), settings, firstArg(args), stepsKind, stepsTag)
	},
}

func init() {
	stepsCmd.Flags().StringVar(&stepsKind, "kind", "", "only list given, when or then steps")
	stepsCmd.Flags().StringVar(&stepsTag, "tag", "", "only list steps of scenarios carrying this tag, inherited tags included")
	rootCmd.AddCommand(stepsCmd)
}

// RunSteps prints the steps in index order, outline text resolved.
func RunSteps(ctx context.Context, w io.Writer, cfg config.Config, path, kind, tag string) error {
	var only step.Kind
	if kind != "" {
		k, err := step.ParseKind(kind)
		if err != nil {
			return err
		}
		only = k
	}
	dir, err := featureDir(path, cfg)
	if err != nil {
		return err
	}

	count := 0
	for loc, err := range newIndexer(cfg).Steps(ctx, dir) {
		if err != nil {
			return err
		}
		if only != "" && !only.Matches(loc.Kind) {
			continue
		}
		if tag != "" && !loc.HasTag(tag) {
			continue
		}
		loc.Desc = loc.Text
		ui.StepRow(w, loc)
		count++
	}
	ui.SummaryLine(w, count, "step")
	return nil
}
