package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/config"
	"github.com/chriserin/stepjump/internal/editor"
	"github.com/chriserin/stepjump/internal/navigate"
	"github.com/chriserin/stepjump/internal/registry"
)

type JumpOptions struct {
	File     string
	Line     int
	FileType string
	Stdin    bool
	Format   string
}

var jumpOpts JumpOptions

var jumpCmd = &cobra.Command{
	Use:   "jump",
	Short: "Jump from the step under the cursor to its counterpart",
	Long: `Jump from a feature-file step to the behave step definition that matches
it, or from a step definition to every feature step it matches.

With --format vim the output is a series of Ex commands for a mapping to
:execute.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var stdin io.Reader
		if jumpOpts.Stdin {
			stdin = cmd.InOrStdin()
		}
		return RunJump(cmd.Context(), cmd.OutOrStdout(), stdin, settings, jumpOpts)
	},
}

func init() {
	flags := jumpCmd.Flags()
	flags.StringVarP(&jumpOpts.File, "file", "f", "", "buffer file name")
	flags.IntVarP(&jumpOpts.Line, "line", "l", 1, "1-based cursor line")
	flags.StringVar(&jumpOpts.FileType, "filetype", "", "editor filetype (inferred from the extension when empty)")
	flags.BoolVar(&jumpOpts.Stdin, "stdin", false, "read the buffer text from stdin")
	flags.StringVar(&jumpOpts.Format, "format", editor.FormatText, "output format: vim, json or text")
	jumpCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(jumpCmd)
}

// RunJump reports navigation failures through the sink and returns nil for
// them, so an editor mapping never sees a failed command.
func RunJump(ctx context.Context, w io.Writer, stdin io.Reader, cfg config.Config, opts JumpOptions) error {
	sink, err := editor.NewSink(opts.Format, w)
	if err != nil {
		return err
	}
	buf, err := editor.Load(opts.File, opts.Line, opts.FileType, stdin, sink)
	if errors.Is(err, fs.ErrNotExist) {
		sink.Message(fmt.Sprintf("%s does not exist", opts.File))
		return nil
	}
	if err != nil {
		return err
	}

	loader, closeStore := newLoader(ctx, cfg)
	defer closeStore()

	nav, err := navigate.New(cfg.Navigation(), buf, registry.NewCache(loader), newIndexer(cfg))
	if err != nil {
		sink.Message(err.Error())
		return err
	}
	if _, err := nav.Jump(ctx); err != nil && !navigate.Expected(err) {
		return err
	}
	return nil
}
