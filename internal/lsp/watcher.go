package lsp

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 50 * time.Millisecond

const environmentFile = "environment.py"

// Watcher reports changes to step modules, and to the environment.py next
// to each steps directory, for the directories it is given.
type Watcher struct {
	fw       *fsnotify.Watcher
	onChange func(dir string)
	fired    chan string
	done     chan struct{}

	mu      sync.Mutex
	watched map[string]bool     // directories handed to fsnotify
	steps   map[string]bool     // steps directories
	envs    map[string][]string // parent directory -> steps directories below it
	stopped bool
}

// NewWatcher calls onChange with the steps directory of every changed *.py
// file. A changed environment.py reports every steps directory beside it.
func NewWatcher(onChange func(dir string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		onChange: onChange,
		fired:    make(chan string),
		done:     make(chan struct{}),
		watched:  map[string]bool{},
		steps:    map[string]bool{},
		envs:     map[string][]string{},
	}
	go w.loop()
	return w, nil
}

// Add starts watching the steps directory dir and its parent. Adding a
// watched dir again is a no-op.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.steps[dir] {
		return nil
	}
	if err := w.watch(dir); err != nil {
		return err
	}
	w.steps[dir] = true

	parent := filepath.Dir(dir)
	if parent == dir {
		return nil
	}
	if err := w.watch(parent); err != nil {
		return err
	}
	w.envs[parent] = append(w.envs[parent], dir)
	return nil
}

func (w *Watcher) watch(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.fw.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}

// targets returns the steps directories affected by a change to file.
func (w *Watcher) targets(file string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dir := filepath.Dir(file)
	var out []string
	if w.steps[dir] {
		out = append(out, dir)
	}
	if filepath.Base(file) == environmentFile {
		out = append(out, w.envs[dir]...)
	}
	return out
}

func (w *Watcher) loop() {
	// editors write several times per save; report once the writes settle
	timers := map[string]*time.Timer{}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".py") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if t, ok := timers[event.Name]; ok {
				t.Reset(debounceInterval)
				continue
			}
			name := event.Name
			timers[name] = time.AfterFunc(debounceInterval, func() {
				select {
				case w.fired <- name:
				case <-w.done:
				}
			})

		case name := <-w.fired:
			delete(timers, name)
			for _, dir := range w.targets(name) {
				w.onChange(dir)
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}

		case <-w.done:
			return
		}
	}
}

// Stop is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}
