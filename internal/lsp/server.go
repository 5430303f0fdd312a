// Package lsp serves textDocument/definition for feature files and behave
// step modules over the language server protocol.
package lsp

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/editor"
	"github.com/chriserin/stepjump/internal/navigate"
)

// Version is reported in the initialize result.
var Version = "dev"

type Server struct {
	opts       navigate.Options
	registries *registryWatch
	features   navigate.Features
	docs       *documents

	mu       sync.Mutex
	shutdown bool
}

// New builds a server. A nil watcher disables invalidation on file changes.
func New(opts navigate.Options, registries Registries, features navigate.Features, watcher *Watcher) *Server {
	return &Server{
		opts:       opts,
		registries: &registryWatch{Registries: registries, watcher: watcher},
		features:   features,
		docs:       newDocuments(),
	}
}

// Serve speaks JSON-RPC over rwc until the client disconnects or sends exit.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.Handle))
	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
	return nil
}

// Handle dispatches one request or notification.
func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("lsp request", "method", req.Method)

	s.mu.Lock()
	down := s.shutdown
	s.mu.Unlock()
	if down && req.Method != protocol.MethodExit {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server is shutting down"}
	}

	switch req.Method {
	case protocol.MethodInitialize:
		return s.initialize(), nil

	case protocol.MethodInitialized:
		return nil, nil

	case protocol.MethodShutdown:
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return nil, nil

	case protocol.MethodExit:
		return nil, conn.Close()

	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		s.DidOpen(params)
		return nil, nil

	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		s.DidChange(params)
		return nil, nil

	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		s.DidClose(params)
		return nil, nil

	case protocol.MethodTextDocumentDefinition:
		var params protocol.DefinitionParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		locs, messages, err := s.Definition(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, msg := range messages {
			if err := conn.Notify(ctx, protocol.MethodWindowShowMessage, protocol.ShowMessageParams{
				Type:    protocol.MessageTypeWarning,
				Message: msg,
			}); err != nil {
				logger.Warn("showMessage failed", "error", err)
			}
		}
		return locs, nil
	}

	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
}

func (s *Server) initialize() protocol.InitializeResult {
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			DefinitionProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{Name: "stepjump", Version: Version},
	}
}

func (s *Server) DidOpen(params protocol.DidOpenTextDocumentParams) {
	doc := params.TextDocument
	s.docs.set(filename(doc.URI), string(doc.LanguageID), doc.Text)
}

// DidChange keeps the last full-text change.
func (s *Server) DidChange(params protocol.DidChangeTextDocumentParams) {
	changes := params.ContentChanges
	if len(changes) == 0 {
		return
	}
	s.docs.set(filename(params.TextDocument.URI), "", changes[len(changes)-1].Text)
}

func (s *Server) DidClose(params protocol.DidCloseTextDocumentParams) {
	s.docs.remove(filename(params.TextDocument.URI))
}

// Definition runs a jump from the given position. Navigation failures come
// back as messages for window/showMessage with an empty result.
func (s *Server) Definition(ctx context.Context, params protocol.DefinitionParams) ([]protocol.Location, []string, error) {
	name := filename(params.TextDocument.URI)
	doc, err := s.docs.get(name)
	if err != nil {
		return []protocol.Location{}, []string{err.Error()}, nil
	}

	buf := &buffer{
		name:     name,
		text:     doc.text,
		line:     int(params.Position.Line) + 1,
		filetype: fileType(doc.languageID, name),
	}
	nav, err := navigate.New(s.opts, buf, s.registries, s.features)
	if err != nil {
		return nil, nil, err
	}

	res, err := nav.Jump(ctx)
	if err != nil && !navigate.Expected(err) {
		ctxlog.FromContext(ctx).Warn("definition failed", "file", name, "error", err)
	}
	locs := []protocol.Location{}
	for _, t := range res.Targets {
		locs = append(locs, location(t.File, t.Line))
	}
	return locs, buf.messages, nil
}

// buffer collects what the navigator asks the editor to do.
type buffer struct {
	name     string
	text     string
	line     int
	filetype string
	messages []string
}

func (b *buffer) CurrentText() string { return b.text }
func (b *buffer) CursorLine() int     { return b.line }
func (b *buffer) BufferName() string  { return b.name }
func (b *buffer) FileType() string    { return b.filetype }

// OpenAt and ShowList are no-ops: the targets are returned as the result.
func (b *buffer) OpenAt(string, int) error                 { return nil }
func (b *buffer) ShowList([]navigate.ListEntry, int) error { return nil }
func (b *buffer) Message(msg string)                       { b.messages = append(b.messages, msg) }

func fileType(languageID, name string) string {
	switch id := strings.ToLower(languageID); id {
	case "cucumber", "gherkin", "feature", "python":
		return id
	}
	return editor.FileType(name)
}

func location(file string, line int) protocol.Location {
	pos := protocol.Position{Line: uint32(max(line-1, 0))}
	return protocol.Location{
		URI:   protocol.DocumentURI(uri.File(file)),
		Range: protocol.Range{Start: pos, End: pos},
	}
}

func filename(u protocol.DocumentURI) string {
	return uri.URI(u).Filename()
}

func unmarshal(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
