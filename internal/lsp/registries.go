package lsp

import (
	"context"
	"path/filepath"

	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/navigate"
	"github.com/chriserin/stepjump/internal/registry"
)

// Registries is a registry source that can drop stale entries.
type Registries interface {
	navigate.Registries
	Invalidate(stepsDir string)
}

// registryWatch starts watching every steps directory it loads.
type registryWatch struct {
	Registries
	watcher *Watcher
}

func (r *registryWatch) Get(ctx context.Context, stepsDir string) (*registry.Registry, error) {
	reg, err := r.Registries.Get(ctx, stepsDir)
	if err != nil || r.watcher == nil {
		return reg, err
	}
	abs, err := filepath.Abs(stepsDir)
	if err != nil {
		return reg, nil
	}
	if err := r.watcher.Add(abs); err != nil {
		ctxlog.FromContext(ctx).Warn("cannot watch steps directory", "dir", abs, "error", err)
	}
	return reg, nil
}
