// Package navigate resolves the counterpart of the step under the cursor
// and drives the editor to it.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/index"
	"github.com/chriserin/stepjump/internal/locate"
	"github.com/chriserin/stepjump/internal/parser"
	"github.com/chriserin/stepjump/internal/pyscan"
	"github.com/chriserin/stepjump/internal/registry"
	"github.com/chriserin/stepjump/internal/step"
	"github.com/chriserin/stepjump/internal/stepmatch"
)

var (
	ErrUnsupported         = errors.New("unsupported")
	ErrUnsupportedLayout   = errors.New("structure not supported")
	ErrUnsupportedFileType = errors.New("file type not supported")
	ErrNoDecorator         = errors.New("no step decorator")
	ErrNoResult            = errors.New("no result")
	ErrNotFound            = errors.New("not found")
)

// Expected reports whether err is a navigation outcome to show the user
// rather than a failure of the tool itself.
func Expected(err error) bool {
	var parseErr *index.ParseError
	switch {
	case errors.Is(err, ErrUnsupportedLayout),
		errors.Is(err, ErrUnsupportedFileType),
		errors.Is(err, ErrNoDecorator),
		errors.Is(err, ErrNoResult),
		errors.Is(err, ErrNotFound),
		errors.Is(err, fs.ErrNotExist),
		errors.As(err, &parseErr):
		return true
	}
	return false
}

// ListEntry is one row of a location list.
type ListEntry struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// EditorPort is everything the navigator needs from the host editor.
type EditorPort interface {
	// CurrentText is the whole buffer.
	CurrentText() string
	// CursorLine is 1-based.
	CursorLine() int
	BufferName() string
	FileType() string
	OpenAt(file string, line int) error
	// ShowList publishes entries as a location list. A height of zero
	// publishes without opening the list view.
	ShowList(entries []ListEntry, height int) error
	Message(msg string)
}

// Registries supplies loaded step registries per steps directory.
type Registries interface {
	Get(ctx context.Context, stepsDir string) (*registry.Registry, error)
	Matcher(ctx context.Context, stepsDir string) (string, error)
}

// Features indexes feature files.
type Features interface {
	Steps(ctx context.Context, dir string) iter.Seq2[step.Location, error]
	Content(ctx context.Context, path string, content []byte) (*parser.ParsedFile, error)
}

type Options struct {
	SearchEffort     int
	ListHeight       int
	StepsDir         string
	FeatureFileTypes []string
}

func DefaultOptions() Options {
	return Options{
		SearchEffort:     locate.DefaultEffort,
		ListHeight:       6,
		StepsDir:         "steps",
		FeatureFileTypes: []string{"cucumber", "gherkin", "feature"},
	}
}

type Direction string

const (
	ToPython  Direction = "python"
	ToFeature Direction = "feature"
)

// Result is what a successful jump resolved to.
type Result struct {
	Direction Direction
	Targets   []ListEntry
}

type Navigator struct {
	opts       Options
	editor     EditorPort
	registries Registries
	features   Features
}

// New checks that every collaborator is present.
func New(opts Options, editor EditorPort, registries Registries, features Features) (*Navigator, error) {
	switch {
	case editor == nil:
		return nil, fmt.Errorf("%w: editor unavailable", ErrUnsupported)
	case registries == nil:
		return nil, fmt.Errorf("%w: step registry unavailable", ErrUnsupported)
	case features == nil:
		return nil, fmt.Errorf("%w: feature indexer unavailable", ErrUnsupported)
	}
	def := DefaultOptions()
	if opts.SearchEffort <= 0 {
		opts.SearchEffort = def.SearchEffort
	}
	if opts.ListHeight <= 0 {
		opts.ListHeight = def.ListHeight
	}
	if opts.StepsDir == "" {
		opts.StepsDir = def.StepsDir
	}
	if len(opts.FeatureFileTypes) == 0 {
		opts.FeatureFileTypes = def.FeatureFileTypes
	}
	return &Navigator{opts: opts, editor: editor, registries: registries, features: features}, nil
}

// Jump navigates from the cursor to its counterpart. Every failure is also
// reported through EditorPort.Message.
func (n *Navigator) Jump(ctx context.Context) (Result, error) {
	res, err := n.jump(ctx)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("jump failed", "buffer", n.editor.BufferName(), "error", err)
		n.editor.Message(message(err))
	}
	return res, err
}

// Direction reports which way a jump from the current buffer goes.
func (n *Navigator) Direction() Direction {
	if slices.Contains(n.opts.FeatureFileTypes, n.editor.FileType()) {
		return ToPython
	}
	return ToFeature
}

func (n *Navigator) jump(ctx context.Context) (Result, error) {
	name := n.editor.BufferName()
	base, err := locate.Find(name, n.opts.SearchEffort)
	if err != nil {
		return Result{}, ErrUnsupportedLayout
	}
	ctxlog.FromContext(ctx).Debug("located feature directory", "dir", base)

	if n.Direction() == ToPython {
		if !strings.HasSuffix(name, ".feature") {
			return Result{}, ErrUnsupportedFileType
		}
		return n.toPython(ctx, base)
	}
	if !strings.HasSuffix(name, ".py") {
		return Result{}, ErrUnsupportedFileType
	}
	return n.toFeature(ctx, base)
}

func (n *Navigator) toPython(ctx context.Context, base string) (Result, error) {
	reg, err := n.registries.Get(ctx, filepath.Join(base, n.opts.StepsDir))
	if err != nil {
		return Result{}, err
	}

	entry, ok := reg.Find(StepText(currentLine(n.editor)))
	if !ok {
		resolved, isOutline := n.outlineText(ctx)
		if isOutline {
			entry, ok = reg.Find(resolved)
		}
	}
	if !ok {
		return Result{}, ErrNotFound
	}

	if err := n.editor.OpenAt(entry.File, entry.Line); err != nil {
		return Result{}, err
	}
	return Result{
		Direction: ToPython,
		Targets:   []ListEntry{{File: entry.File, Line: entry.Line, Text: entry.Location().Desc}},
	}, nil
}

// outlineText is the resolved text of the outline step under the cursor.
func (n *Navigator) outlineText(ctx context.Context) (string, bool) {
	pf, err := n.features.Content(ctx, n.editor.BufferName(), []byte(n.editor.CurrentText()))
	if err != nil {
		return "", false
	}
	loc, ok := pf.StepAt(n.editor.CursorLine())
	if !ok || loc.Text == loc.Desc {
		return "", false
	}
	return loc.Text, true
}

func (n *Navigator) toFeature(ctx context.Context, base string) (Result, error) {
	matcher, err := n.registries.Matcher(ctx, filepath.Join(base, n.opts.StepsDir))
	if err != nil {
		return Result{}, err
	}
	defs, err := pyscan.Definitions(ctx, []byte(n.editor.CurrentText()), matcher)
	if err != nil {
		return Result{}, err
	}
	def, ok := pyscan.LatestDefinition(defs, n.editor.CursorLine())
	if !ok {
		return Result{}, ErrNoDecorator
	}
	m, err := stepmatch.Compile(def.Matcher, def.Pattern)
	if err != nil {
		return Result{}, fmt.Errorf("compiling %q: %w", def.Pattern, err)
	}

	var found []ListEntry
	for loc, err := range n.features.Steps(ctx, base) {
		if err != nil {
			return Result{}, err
		}
		if def.Kind.Matches(loc.Kind) && m.Match(loc.Text) {
			found = append(found, ListEntry{File: loc.File, Line: loc.Line, Text: loc.Desc})
		}
	}
	if len(found) == 0 {
		return Result{}, ErrNoResult
	}

	height := min(len(found), n.opts.ListHeight)
	if len(found) == 1 {
		if err := n.editor.OpenAt(found[0].File, found[0].Line); err != nil {
			return Result{}, err
		}
		height = 0
	}
	if err := n.editor.ShowList(found, height); err != nil {
		return Result{}, err
	}
	return Result{Direction: ToFeature, Targets: found}, nil
}

// StepText drops the leading keyword token of a feature line. A line
// without a space is kept whole.
func StepText(line string) string {
	line = strings.TrimLeft(line, " \t")
	line = line[strings.IndexByte(line, ' ')+1:]
	return strings.TrimRight(strings.TrimLeft(line, " \t"), " \t\r")
}

func currentLine(e EditorPort) string {
	lines := strings.Split(e.CurrentText(), "\n")
	i := e.CursorLine() - 1
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

func message(err error) string {
	var parseErr *index.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.File + " no parse"
	}
	return err.Error()
}
