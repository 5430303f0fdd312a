// Package locate finds the directory that holds a behave project's features.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultEffort is how many ancestor levels each scan may visit.
const DefaultEffort = 9

var ErrNotFound = errors.New("feature directory not found")

// Find returns the feature base directory for start. Three scans run in
// order, each starting again from the original directory:
//
//  1. an ancestor with features/*.feature returns its features subdirectory
//  2. an ancestor holding environment.py returns itself
//  3. an ancestor holding *.feature returns itself
func Find(start string, effort int) (string, error) {
	if effort <= 0 {
		effort = DefaultEffort
	}
	dir, err := startDir(start)
	if err != nil {
		return "", err
	}

	if d, ok := walkUp(dir, effort, func(d string) (string, bool) {
		features := filepath.Join(d, "features")
		return features, hasFeatureFile(features)
	}); ok {
		return d, nil
	}
	if d, ok := walkUp(dir, effort, func(d string) (string, bool) {
		return d, isFile(filepath.Join(d, "environment.py"))
	}); ok {
		return d, nil
	}
	if d, ok := walkUp(dir, effort, func(d string) (string, bool) {
		return d, hasFeatureFile(d)
	}); ok {
		return d, nil
	}
	return "", fmt.Errorf("%w from %s", ErrNotFound, dir)
}

func startDir(start string) (string, error) {
	if start == "~" || strings.HasPrefix(start, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", start, err)
		}
		start = filepath.Join(home, strings.TrimPrefix(start, "~"))
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	if !isDir(abs) {
		abs = filepath.Dir(abs)
	}
	return abs, nil
}

// walkUp visits dir and at most effort-1 of its ancestors.
func walkUp(dir string, effort int, check func(string) (string, bool)) (string, bool) {
	for range effort {
		if isDir(dir) {
			if found, ok := check(dir); ok {
				return found, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// hasFeatureFile lists dir rather than globbing it, so metacharacters in
// the path are taken literally.
func hasFeatureFile(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".feature") {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
