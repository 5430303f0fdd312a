// Package registry holds the step definitions of a behave steps directory.
package registry

import (
	"github.com/chriserin/stepjump/internal/step"
	"github.com/chriserin/stepjump/internal/stepmatch"
)

// Entry is a registered definition with its compiled predicate.
type Entry struct {
	step.Definition
	matcher stepmatch.Matcher
}

func (e Entry) Match(text string) bool {
	return e.matcher.Match(text)
}

// Registry maps step kind to definitions in registration order.
type Registry struct {
	steps map[step.Kind][]Entry
}

func New() *Registry {
	return &Registry{steps: map[step.Kind][]Entry{}}
}

// Add compiles and registers d. A second definition with the same kind and
// pattern is ignored and reported as a duplicate.
func (r *Registry) Add(d step.Definition) (added bool, err error) {
	for _, e := range r.steps[d.Kind] {
		if e.Pattern == d.Pattern {
			return false, nil
		}
	}
	m, err := stepmatch.Compile(d.Matcher, d.Pattern)
	if err != nil {
		return false, err
	}
	r.steps[d.Kind] = append(r.steps[d.Kind], Entry{Definition: d, matcher: m})
	return true, nil
}

// Entries returns every entry, kinds in given, when, then, step order.
func (r *Registry) Entries() []Entry {
	var out []Entry
	for _, k := range step.Kinds {
		out = append(out, r.steps[k]...)
	}
	return out
}

// Find returns the first entry whose pattern matches text.
func (r *Registry) Find(text string) (Entry, bool) {
	for _, e := range r.Entries() {
		if e.Match(text) {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Registry) Len() int {
	n := 0
	for _, entries := range r.steps {
		n += len(entries)
	}
	return n
}
