// Package editor adapts a buffer read from disk or stdin to the navigator,
// writing the resulting editor actions to a sink.
package editor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chriserin/stepjump/internal/navigate"
)

// Sink receives the actions the navigator requests.
type Sink interface {
	OpenAt(file string, line int) error
	ShowList(entries []navigate.ListEntry, height int) error
	Message(msg string)
}

// Buffer is an EditorPort over an in-memory copy of the buffer.
type Buffer struct {
	Sink
	Name string
	Text string
	Type string
	Line int
}

var _ navigate.EditorPort = (*Buffer)(nil)

func (b *Buffer) CurrentText() string { return b.Text }
func (b *Buffer) CursorLine() int     { return b.Line }
func (b *Buffer) BufferName() string  { return b.Name }
func (b *Buffer) FileType() string    { return b.Type }

// Load builds a Buffer for name. The text comes from stdin when it is
// non-nil, else from the file. An empty filetype is inferred from the
// extension.
func Load(name string, line int, filetype string, stdin io.Reader, sink Sink) (*Buffer, error) {
	if line < 1 {
		return nil, fmt.Errorf("line must be 1 or greater, got %d", line)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, err
	}
	var data []byte
	if stdin != nil {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(abs)
	}
	if err != nil {
		return nil, fmt.Errorf("reading buffer: %w", err)
	}
	if filetype == "" {
		filetype = FileType(abs)
	}
	return &Buffer{
		Sink: sink,
		Name: abs,
		Text: strings.ReplaceAll(string(data), "\r\n", "\n"),
		Type: filetype,
		Line: line,
	}, nil
}

// FileType maps an extension to the filetype vim would give it.
func FileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".feature":
		return "cucumber"
	case ".py", ".pyi":
		return "python"
	}
	return ""
}
