// Package index turns a directory of feature files into step locations.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/parser"
	"github.com/chriserin/stepjump/internal/step"
)

// DefaultMinSize is the character count below which a feature file is
// treated as a placeholder and never parsed.
const DefaultMinSize = 16

// ParseError reports a feature file that did not parse. It aborts indexing.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.File + " no parse"
	}
	return fmt.Sprintf("%s no parse: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type ParseFunc func(filename string, content []byte) (*parser.Document, error)

type Indexer struct {
	Parse   ParseFunc
	MinSize int
}

func New(minSize int) *Indexer {
	if minSize <= 0 {
		minSize = DefaultMinSize
	}
	return &Indexer{Parse: parser.Parse, MinSize: minSize}
}

// Steps yields every step of every *.feature file under dir in lexical
// walk order. The first error is yielded once and ends the sequence.
func (ix *Indexer) Steps(ctx context.Context, dir string) iter.Seq2[step.Location, error] {
	return func(yield func(step.Location, error) bool) {
		stopped := false
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".feature" {
				return nil
			}
			pf, err := ix.File(ctx, path)
			if err != nil {
				return err
			}
			for _, s := range pf.Steps {
				if !yield(s, nil) {
					stopped = true
					return filepath.SkipAll
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(step.Location{}, err)
		}
	}
}

// File parses a single feature file. Files under MinSize characters come
// back empty without being parsed.
func (ix *Indexer) File(ctx context.Context, path string) (*parser.ParsedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ix.Content(ctx, path, content)
}

// Content is File for a buffer that may not be saved yet.
func (ix *Indexer) Content(ctx context.Context, path string, content []byte) (*parser.ParsedFile, error) {
	logger := ctxlog.FromContext(ctx)
	if utf8.RuneCount(content) < ix.MinSize {
		logger.Debug("skipping placeholder feature", "file", path)
		return &parser.ParsedFile{Path: path}, nil
	}

	doc, err := ix.Parse(path, content)
	if err != nil || doc == nil || doc.Feature == nil {
		logger.Warn("feature did not parse", "file", path, "error", err)
		return nil, &ParseError{File: path, Err: err}
	}
	return parser.Transform(doc, path), nil
}

// Collect drains a step sequence, stopping at the first error.
func Collect(seq iter.Seq2[step.Location, error]) ([]step.Location, error) {
	var out []step.Location
	for s, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
