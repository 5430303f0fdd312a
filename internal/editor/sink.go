package editor

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chriserin/stepjump/internal/navigate"
	"github.com/chriserin/stepjump/internal/ui"
)

const (
	FormatVim  = "vim"
	FormatJSON = "json"
	FormatText = "text"
)

func NewSink(format string, w io.Writer) (Sink, error) {
	switch format {
	case FormatVim:
		return &VimSink{w: w}, nil
	case FormatJSON:
		return &JSONSink{enc: json.NewEncoder(w)}, nil
	case FormatText, "":
		return &TextSink{w: w}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want vim, json or text)", format)
}

// VimSink writes Ex commands, one per line, for a mapping to execute.
type VimSink struct {
	w io.Writer
}

func (s *VimSink) OpenAt(file string, line int) error {
	_, err := fmt.Fprintf(s.w, "edit +%d %s\n", line, escapeFilename(file))
	return err
}

func (s *VimSink) ShowList(entries []navigate.ListEntry, height int) error {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, fmt.Sprintf("{'filename': %s, 'lnum': %d, 'text': %s}",
			quote(e.File), e.Line, quote(e.Text)))
	}
	if _, err := fmt.Fprintf(s.w, "call setloclist(0, [%s])\n", strings.Join(items, ", ")); err != nil {
		return err
	}
	if height > 0 {
		_, err := fmt.Fprintf(s.w, "lopen %d\n", height)
		return err
	}
	return nil
}

func (s *VimSink) Message(msg string) {
	fmt.Fprintf(s.w, "echomsg %s\n", quote(msg))
}

// quote makes a single-quoted vim string literal.
func quote(s string) string {
	s = strings.NewReplacer("'", "''", "\n", " ").Replace(s)
	return "'" + s + "'"
}

// escapeFilename mirrors fnameescape() for the characters :edit treats
// specially.
func escapeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if strings.ContainsRune(" \t\n*?[{`$\\%#'\"|!<", r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// JSONSink writes one JSON object per action.
type JSONSink struct {
	enc *json.Encoder
}

type action struct {
	Action  string               `json:"action"`
	File    string               `json:"file,omitempty"`
	Line    int                  `json:"line,omitempty"`
	Entries []navigate.ListEntry `json:"entries,omitempty"`
	Height  *int                 `json:"height,omitempty"`
	Message string               `json:"message,omitempty"`
}

func (s *JSONSink) OpenAt(file string, line int) error {
	return s.enc.Encode(action{Action: "open", File: file, Line: line})
}

func (s *JSONSink) ShowList(entries []navigate.ListEntry, height int) error {
	return s.enc.Encode(action{Action: "list", Entries: entries, Height: &height})
}

func (s *JSONSink) Message(msg string) {
	s.enc.Encode(action{Action: "message", Message: msg})
}

// TextSink renders actions for a terminal.
type TextSink struct {
	w io.Writer
}

func (s *TextSink) OpenAt(file string, line int) error {
	ui.JumpLine(s.w, file, line)
	return nil
}

func (s *TextSink) ShowList(entries []navigate.ListEntry, height int) error {
	for _, e := range entries {
		ui.ListRow(s.w, e.File, e.Line, e.Text)
	}
	return nil
}

func (s *TextSink) Message(msg string) {
	ui.MessageLine(s.w, msg)
}
