package parser

// Layer 1: feature AST, a trimmed view of the gherkin document

type Document struct {
	Feature *Feature
}

type Feature struct {
	Header     FeatureHeader
	Background *Background
	Scenarios  []ScenarioDefinition
	Rules      []Rule
}

type FeatureHeader struct {
	Tags []Tag
	Name string
}

type Background struct {
	Name  string
	Line  int
	Steps []Step
}

type Rule struct {
	Tags       []Tag
	Name       string
	Line       int
	Background *Background
	Scenarios  []ScenarioDefinition
}

type ScenarioDefinition struct {
	Tags     []Tag
	Scenario Scenario
	Line     int // 1-based line number of Scenario: line
}

type Scenario struct {
	Name     string
	Steps    []Step
	Examples []Examples // non-empty for outlines
}

type Tag struct {
	Name string // e.g. "@smoke", "@wip"
}

type KeywordType int

const (
	KeywordUnknown     KeywordType = iota // "*"
	KeywordContext                        // Given
	KeywordAction                         // When
	KeywordOutcome                        // Then
	KeywordConjunction                    // And, But
)

type Step struct {
	Keyword     string // as written, e.g. "Given ", "And "
	KeywordType KeywordType
	Text        string
	Line        int
}

type Examples struct {
	Name   string
	Line   int
	Header []string
	Rows   [][]string
}

type ParseError struct {
	Message string
}

func (e ParseError) Error() string {
	return e.Message
}
