// Package stepmatch compiles behave step patterns into match predicates.
//
// Two pattern languages are supported: the default "parse" format strings
// ("a {name:w} thing") and "re" regular expressions. "cfparse" patterns are
// compiled as "parse"; their cardinality suffixes are not interpreted.
package stepmatch

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	Parse   = "parse"
	CFParse = "cfparse"
	Regex   = "re"
)

// Matcher reports whether step text satisfies a compiled pattern.
type Matcher interface {
	Match(text string) bool
	Pattern() string
}

// Normalize maps a use_step_matcher argument onto a supported matcher name.
func Normalize(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Parse, CFParse:
		return Parse, nil
	case Regex:
		return Regex, nil
	}
	return "", fmt.Errorf("unsupported step matcher %q", name)
}

// Compile builds the matcher named by kind for pattern.
func Compile(kind, pattern string) (Matcher, error) {
	name, err := Normalize(kind)
	if err != nil {
		return nil, err
	}
	if name == Regex {
		return compileRegex(pattern)
	}
	return compileParse(pattern)
}

// MustCompile is Compile for patterns known to be valid.
func MustCompile(kind, pattern string) Matcher {
	m, err := Compile(kind, pattern)
	if err != nil {
		panic(err)
	}
	return m
}

type regexMatcher struct {
	pattern string
	re      *regexp.Regexp
}

// behave's RegexMatcher anchors at the start of the step text only.
func compileRegex(pattern string) (*regexMatcher, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compiling step regex %q: %w", pattern, err)
	}
	return &regexMatcher{pattern: pattern, re: re}, nil
}

func (m *regexMatcher) Match(text string) bool { return m.re.MatchString(text) }
func (m *regexMatcher) Pattern() string        { return m.pattern }
