package parser

import (
	"path/filepath"
	"strings"

	"github.com/chriserin/stepjump/internal/step"
)

// ParsedFile is the Layer 2 application model extracted from the AST.
type ParsedFile struct {
	Name  string
	Path  string
	Steps []step.Location
}

// Transform converts a Layer 1 Document into a Layer 2 ParsedFile. Steps come
// out in document order: feature background, scenarios, then each rule's
// background and scenarios.
func Transform(doc *Document, filename string) *ParsedFile {
	pf := &ParsedFile{Path: filename}

	if doc.Feature == nil {
		pf.Name = filenameWithoutExt(filename)
		return pf
	}
	pf.Name = doc.Feature.Header.Name

	emit := func(steps []Step, examples []Examples, tags []string) {
		kind := step.Given
		for _, s := range steps {
			kind = stepKind(s.KeywordType, kind)
			pf.Steps = append(pf.Steps, step.Location{
				Kind: kind,
				Desc: s.Text,
				Text: Resolve(s.Text, examples),
				File: filename,
				Line: s.Line,
				Tags: tags,
			})
		}
	}

	ft := doc.Feature.Header.Tags
	if bg := doc.Feature.Background; bg != nil {
		emit(bg.Steps, nil, tagNames(ft))
	}
	for _, sd := range doc.Feature.Scenarios {
		emit(sd.Scenario.Steps, sd.Scenario.Examples, tagNames(ft, sd.Tags))
	}
	for _, r := range doc.Feature.Rules {
		if r.Background != nil {
			emit(r.Background.Steps, nil, tagNames(ft, r.Tags))
		}
		for _, sd := range r.Scenarios {
			emit(sd.Scenario.Steps, sd.Scenario.Examples, tagNames(ft, r.Tags, sd.Tags))
		}
	}

	return pf
}

// StepAt returns the step on the given 1-based line, if any.
func (pf *ParsedFile) StepAt(line int) (step.Location, bool) {
	for _, s := range pf.Steps {
		if s.Line == line {
			return s, true
		}
	}
	return step.Location{}, false
}

// Resolve substitutes <heading> placeholders with the first row of the first
// examples table. Text is returned unchanged when there is no such row.
func Resolve(text string, examples []Examples) string {
	if len(examples) == 0 || len(examples[0].Rows) == 0 {
		return text
	}
	table := examples[0]
	row := table.Rows[0]
	for i, heading := range table.Header {
		if i >= len(row) {
			break
		}
		text = strings.ReplaceAll(text, "<"+heading+">", row[i])
	}
	return text
}

// And/But/* continue the previous step's kind.
func stepKind(t KeywordType, previous step.Kind) step.Kind {
	switch t {
	case KeywordContext:
		return step.Given
	case KeywordAction:
		return step.When
	case KeywordOutcome:
		return step.Then
	}
	return previous
}

// tagNames flattens inherited tag lists, outermost first. Nil when there are none.
func tagNames(groups ...[]Tag) []string {
	var names []string
	for _, g := range groups {
		for _, t := range g {
			names = append(names, t.Name)
		}
	}
	return names
}

func filenameWithoutExt(filename string) string {
	name := filepath.Base(filename)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return name
}
