package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/db"
	"github.com/chriserin/stepjump/internal/pyscan"
	"github.com/chriserin/stepjump/internal/step"
	"github.com/chriserin/stepjump/internal/stepmatch"
)

// Loader builds a registry from a behave steps directory.
type Loader struct {
	// Store is optional. Lookup or store failures fall back to scanning.
	Store          *db.Cache
	DefaultMatcher string
}

// Load scans every *.py directly inside stepsDir in sorted order. A
// use_step_matcher call in the environment.py next to stepsDir sets the
// matcher each module starts with.
func (l *Loader) Load(ctx context.Context, stepsDir string) (*Registry, error) {
	logger := ctxlog.FromContext(ctx)

	abs, err := filepath.Abs(stepsDir)
	if err != nil {
		return nil, err
	}
	modules, err := stepModules(abs)
	if err != nil {
		return nil, err
	}

	matcher, err := l.EnvironmentMatcher(ctx, abs)
	if err != nil {
		return nil, err
	}

	reg := New()
	for _, path := range modules {
		defs, err := l.definitions(ctx, path, matcher)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			added, err := reg.Add(d)
			if err != nil {
				logger.Warn("skipping step definition", "file", d.File, "line", d.Line, "error", err)
				continue
			}
			if !added {
				logger.Warn("duplicate step definition", "kind", d.Kind, "pattern", d.Pattern, "file", d.File, "line", d.Line)
			}
		}
	}
	logger.Debug("loaded step registry", "dir", abs, "modules", len(modules), "definitions", reg.Len())
	return reg, nil
}

// EnvironmentMatcher is the matcher step modules in stepsDir start with.
func (l *Loader) EnvironmentMatcher(ctx context.Context, stepsDir string) (string, error) {
	path := filepath.Join(filepath.Dir(filepath.Clean(stepsDir)), "environment.py")
	fallback := l.DefaultMatcher
	if fallback == "" {
		fallback = stepmatch.Parse
	}
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return stepmatch.Normalize(fallback)
	}
	if err != nil {
		return "", err
	}
	return pyscan.ActiveMatcher(ctx, src, fallback)
}

func (l *Loader) definitions(ctx context.Context, path, matcher string) ([]step.Definition, error) {
	logger := ctxlog.FromContext(ctx)

	var stamp db.Stamp
	if l.Store != nil {
		s, err := db.StampFile(path, matcher)
		if err != nil {
			return nil, err
		}
		stamp = s
		defs, hit, err := l.Store.Lookup(stamp)
		if err != nil {
			logger.Warn("step cache lookup failed", "file", path, "error", err)
		} else if hit {
			return defs, nil
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defs, err := pyscan.Definitions(ctx, src, matcher)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	for i := range defs {
		defs[i].File = path
	}

	if l.Store != nil {
		if err := l.Store.Store(stamp, defs); err != nil {
			logger.Warn("step cache store failed", "file", path, "error", err)
		}
	}
	return defs, nil
}

func stepModules(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".py") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Cache keeps loaded registries per steps directory.
type Cache struct {
	mu     sync.Mutex
	loader *Loader
	byDir  map[string]*Registry
}

func NewCache(loader *Loader) *Cache {
	return &Cache{loader: loader, byDir: map[string]*Registry{}}
}

// Get returns the registry for stepsDir, loading it on first use.
func (c *Cache) Get(ctx context.Context, stepsDir string) (*Registry, error) {
	abs, err := filepath.Abs(stepsDir)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if reg, ok := c.byDir[abs]; ok {
		return reg, nil
	}
	reg, err := c.loader.Load(ctx, abs)
	if err != nil {
		return nil, err
	}
	c.byDir[abs] = reg
	return reg, nil
}

// Matcher returns the environment matcher for stepsDir. It is read on
// every call since the CLI does not watch environment.py.
func (c *Cache) Matcher(ctx context.Context, stepsDir string) (string, error) {
	return c.loader.EnvironmentMatcher(ctx, stepsDir)
}

// Invalidate drops the registry loaded from stepsDir.
func (c *Cache) Invalidate(stepsDir string) {
	abs, err := filepath.Abs(stepsDir)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byDir, abs)
}

// Dirs lists the loaded steps directories.
func (c *Cache) Dirs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	dirs := make([]string, 0, len(c.byDir))
	for dir := range c.byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
