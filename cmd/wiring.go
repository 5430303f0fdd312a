package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/chriserin/stepjump/internal/config"
	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/db"
	"github.com/chriserin/stepjump/internal/index"
	"github.com/chriserin/stepjump/internal/locate"
	"github.com/chriserin/stepjump/internal/navigate"
	"github.com/chriserin/stepjump/internal/registry"
)

// newLoader builds a registry loader. A cache that cannot be opened is
// logged and skipped.
func newLoader(ctx context.Context, cfg config.Config) (*registry.Loader, func()) {
	loader := &registry.Loader{DefaultMatcher: cfg.StepMatcher}
	if !cfg.Cache.On() {
		return loader, func() {}
	}
	store, err := db.OpenCache(cfg.Cache.Path)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("step cache unavailable", "path", cfg.Cache.Path, "error", err)
		return loader, func() {}
	}
	loader.Store = store
	return loader, func() { store.Close() }
}

func newIndexer(cfg config.Config) *index.Indexer {
	return index.New(cfg.MinFeatureSize)
}

// featureDir locates the feature directory for path, or the working
// directory when path is empty.
func featureDir(path string, cfg config.Config) (string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		path = wd
	}
	dir, err := locate.Find(path, cfg.SearchEffort)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, navigate.ErrUnsupportedLayout)
	}
	return dir, nil
}
