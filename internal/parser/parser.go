package parser

import (
	"bytes"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
)

// Parse parses a .feature file and returns a Document AST. A file without a
// Feature: line parses to a Document with a nil Feature.
func Parse(filename string, content []byte) (*Document, error) {
	gd, err := gherkin.ParseGherkinDocument(bytes.NewReader(content), (&messages.Incrementing{}).NewId)
	if err != nil {
		return nil, ParseError{Message: filename + ": " + strings.TrimSpace(err.Error())}
	}

	doc := &Document{}
	if gd.Feature == nil {
		return doc, nil
	}

	f := gd.Feature
	feature := &Feature{
		Header: FeatureHeader{
			Tags: convertTags(f.Tags),
			Name: f.Name,
		},
	}

	for _, child := range f.Children {
		switch {
		case child.Background != nil:
			feature.Background = convertBackground(child.Background)
		case child.Scenario != nil:
			feature.Scenarios = append(feature.Scenarios, convertScenario(child.Scenario))
		case child.Rule != nil:
			feature.Rules = append(feature.Rules, convertRule(child.Rule))
		}
	}

	doc.Feature = feature
	return doc, nil
}

func convertRule(r *messages.Rule) Rule {
	rule := Rule{Tags: convertTags(r.Tags), Name: r.Name, Line: line(r.Location)}
	for _, child := range r.Children {
		switch {
		case child.Background != nil:
			rule.Background = convertBackground(child.Background)
		case child.Scenario != nil:
			rule.Scenarios = append(rule.Scenarios, convertScenario(child.Scenario))
		}
	}
	return rule
}

func convertBackground(b *messages.Background) *Background {
	return &Background{
		Name:  b.Name,
		Line:  line(b.Location),
		Steps: convertSteps(b.Steps),
	}
}

func convertScenario(s *messages.Scenario) ScenarioDefinition {
	sd := ScenarioDefinition{
		Tags: convertTags(s.Tags),
		Scenario: Scenario{
			Name:  s.Name,
			Steps: convertSteps(s.Steps),
		},
		Line: line(s.Location),
	}
	for _, ex := range s.Examples {
		sd.Scenario.Examples = append(sd.Scenario.Examples, convertExamples(ex))
	}
	return sd
}

func convertExamples(ex *messages.Examples) Examples {
	out := Examples{Name: ex.Name, Line: line(ex.Location)}
	if ex.TableHeader != nil {
		out.Header = cellValues(ex.TableHeader)
	}
	for _, row := range ex.TableBody {
		out.Rows = append(out.Rows, cellValues(row))
	}
	return out
}

func convertSteps(steps []*messages.Step) []Step {
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		out = append(out, Step{
			Keyword:     s.Keyword,
			KeywordType: keywordType(s.KeywordType),
			Text:        s.Text,
			Line:        line(s.Location),
		})
	}
	return out
}

func convertTags(tags []*messages.Tag) []Tag {
	var out []Tag
	for _, t := range tags {
		out = append(out, Tag{Name: t.Name})
	}
	return out
}

func keywordType(t messages.StepKeywordType) KeywordType {
	switch t {
	case messages.StepKeywordType_CONTEXT:
		return KeywordContext
	case messages.StepKeywordType_ACTION:
		return KeywordAction
	case messages.StepKeywordType_OUTCOME:
		return KeywordOutcome
	case messages.StepKeywordType_CONJUNCTION:
		return KeywordConjunction
	}
	return KeywordUnknown
}

func cellValues(row *messages.TableRow) []string {
	values := make([]string, 0, len(row.Cells))
	for _, c := range row.Cells {
		values = append(values, c.Value)
	}
	return values
}

func line(loc *messages.Location) int {
	if loc == nil {
		return 0
	}
	return int(loc.Line)
}
