package lsp

import (
	"os"
	"sync"
)

type document struct {
	text       string
	languageID string
}

// documents holds the text of open buffers, keyed by file path.
type documents struct {
	mu   sync.Mutex
	open map[string]document
}

func newDocuments() *documents {
	return &documents{open: map[string]document{}}
}

func (d *documents) set(path, languageID, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if languageID == "" {
		languageID = d.open[path].languageID
	}
	d.open[path] = document{text: text, languageID: languageID}
}

func (d *documents) remove(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.open, path)
}

// get falls back to the file on disk for buffers the client never opened.
func (d *documents) get(path string) (document, error) {
	d.mu.Lock()
	doc, ok := d.open[path]
	d.mu.Unlock()
	if ok {
		return doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, err
	}
	return document{text: string(data)}, nil
}
