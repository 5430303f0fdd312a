package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepjump/internal/config"
	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/lsp"
	"github.com/chriserin/stepjump/internal/registry"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run a language server answering textDocument/definition on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunLSP(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), settings)
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func RunLSP(ctx context.Context, in io.Reader, out io.Writer, cfg config.Config) error {
	loader, closeStore := newLoader(ctx, cfg)
	defer closeStore()
	registries := registry.NewCache(loader)

	watcher, err := lsp.NewWatcher(registries.Invalidate)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("file watching disabled", "error", err)
		watcher = nil
	} else {
		defer watcher.Stop()
	}

	server := lsp.New(cfg.Navigation(), registries, newIndexer(cfg), watcher)
	return server.Serve(ctx, stdio{in, out})
}

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }
