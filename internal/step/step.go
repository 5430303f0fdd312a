// Package step holds the values passed between the feature and step-definition
// sides of a navigation request.
package step

import (
	"fmt"
	"slices"
	"strings"
)

// Kind is the step keyword type. Feature steps are always given/when/then;
// a step definition may also use the generic Step kind.
type Kind string

const (
	Step  Kind = "step"
	Given Kind = "given"
	When  Kind = "when"
	Then  Kind = "then"
)

// Kinds lists the vocabulary in registry order.
var Kinds = []Kind{Given, When, Then, Step}

// ParseKind accepts a keyword in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Step, Given, When, Then:
		return k, nil
	}
	return "", fmt.Errorf("unknown step kind %q", s)
}

// Matches reports whether a definition of kind k applies to a feature step of kind other.
func (k Kind) Matches(other Kind) bool {
	return k == Step || k == other
}

// Location is one step on either side of the jump.
type Location struct {
	Kind Kind
	Desc string // shown in lists
	Text string // resolved text used for matching
	File string   // empty when the caller already knows the file
	Line int      // 1-based
	Tags []string // feature steps: feature, rule and scenario tags
}

// HasTag reports whether tag is among l's tags. The leading @ is optional.
func (l Location) HasTag(tag string) bool {
	tag = "@" + strings.TrimPrefix(tag, "@")
	return slices.Contains(l.Tags, tag)
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d: %s", l.Line, l.Desc)
	}
	return fmt.Sprintf("%s:%d: %s", l.File, l.Line, l.Desc)
}

// Definition is a registered step definition.
type Definition struct {
	Kind    Kind
	Pattern string
	Matcher string // "parse" or "re"
	File    string
	Line    int
}

// Location converts a definition into the navigable form.
func (d Definition) Location() Location {
	return Location{
		Kind: d.Kind,
		Desc: fmt.Sprintf("@%s(%s)", d.Kind, d.Pattern),
		Text: d.Pattern,
		File: d.File,
		Line: d.Line,
	}
}
