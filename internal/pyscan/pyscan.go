// Package pyscan finds behave step decorators in Python source.
package pyscan

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/chriserin/stepjump/internal/ctxlog"
	"github.com/chriserin/stepjump/internal/step"
	"github.com/chriserin/stepjump/internal/stepmatch"
)

var matcherCalls = map[string]bool{
	"use_step_matcher": true,
	"step_matcher":     true,
}

// Definitions returns the step definitions declared by decorators on
// top-level functions, in source order. defaultMatcher applies until a
// module-level use_step_matcher call switches it. File is left empty.
func Definitions(ctx context.Context, src []byte, defaultMatcher string) ([]step.Definition, error) {
	defs, _, err := scanModule(ctx, src, defaultMatcher)
	return defs, err
}

// ActiveMatcher returns the step matcher in effect once src has run, as
// set by an environment.py that calls use_step_matcher.
func ActiveMatcher(ctx context.Context, src []byte, defaultMatcher string) (string, error) {
	_, matcher, err := scanModule(ctx, src, defaultMatcher)
	return matcher, err
}

func scanModule(ctx context.Context, src []byte, defaultMatcher string) ([]step.Definition, string, error) {
	logger := ctxlog.FromContext(ctx)

	matcher, err := stepmatch.Normalize(defaultMatcher)
	if err != nil {
		return nil, "", err
	}

	// A parser per call: tree-sitter parsers are not safe for concurrent use.
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, "", fmt.Errorf("parsing python source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		logger.Debug("python source has syntax errors, scanning what parsed")
	}

	var defs []step.Definition
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "expression_statement":
			if name, ok := matcherSwitch(node, src); ok {
				normalized, err := stepmatch.Normalize(name)
				if err != nil {
					logger.Warn("ignoring step matcher", "matcher", name, "line", line(node))
					continue
				}
				matcher = normalized
			}
		case "decorated_definition":
			def := node.ChildByFieldName("definition")
			if def == nil || def.Type() != "function_definition" {
				continue
			}
			for j := 0; j < int(node.NamedChildCount()); j++ {
				deco := node.NamedChild(j)
				if deco.Type() != "decorator" {
					continue
				}
				kind, pattern, ok := stepDecorator(deco, src)
				if !ok {
					continue
				}
				defs = append(defs, step.Definition{
					Kind:    kind,
					Pattern: pattern,
					Matcher: matcher,
					Line:    line(deco),
				})
			}
		}
	}
	return defs, matcher, nil
}

// Scan returns the step decorators of src as locations.
func Scan(ctx context.Context, src []byte) ([]step.Location, error) {
	defs, err := Definitions(ctx, src, stepmatch.Parse)
	if err != nil {
		return nil, err
	}
	locs := make([]step.Location, 0, len(defs))
	for _, d := range defs {
		locs = append(locs, d.Location())
	}
	return locs, nil
}

// LatestBefore returns the last location at or above line: the decorator
// governing the function the cursor is in.
func LatestBefore(locs []step.Location, line int) (step.Location, bool) {
	var found step.Location
	ok := false
	for _, l := range locs {
		if l.Line > line {
			break
		}
		found, ok = l, true
	}
	return found, ok
}

// LatestDefinition is LatestBefore for definitions.
func LatestDefinition(defs []step.Definition, line int) (step.Definition, bool) {
	var found step.Definition
	ok := false
	for _, d := range defs {
		if d.Line > line {
			break
		}
		found, ok = d, true
	}
	return found, ok
}

// stepDecorator matches @given("...") style decorators.
func stepDecorator(deco *sitter.Node, src []byte) (step.Kind, string, bool) {
	if deco.NamedChildCount() == 0 {
		return "", "", false
	}
	call := deco.NamedChild(0)
	if call.Type() != "call" {
		return "", "", false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return "", "", false
	}
	kind := step.Kind(fn.Content(src))
	switch kind {
	case step.Step, step.Given, step.When, step.Then:
	default:
		return "", "", false
	}
	pattern, ok := firstStringArg(call, src)
	if !ok {
		return "", "", false
	}
	return kind, pattern, true
}

// matcherSwitch matches a module-level use_step_matcher("re") call.
func matcherSwitch(stmt *sitter.Node, src []byte) (string, bool) {
	if stmt.NamedChildCount() == 0 {
		return "", false
	}
	call := stmt.NamedChild(0)
	if call.Type() != "call" {
		return "", false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	name := fn.Content(src)
	if fn.Type() == "attribute" {
		attr := fn.ChildByFieldName("attribute")
		if attr == nil {
			return "", false
		}
		name = attr.Content(src)
	}
	if !matcherCalls[name] {
		return "", false
	}
	return firstStringArg(call, src)
}

func firstStringArg(call *sitter.Node, src []byte) (string, bool) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != "argument_list" {
		return "", false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Type() {
		case "comment":
			continue
		case "string", "concatenated_string":
			return stringValue(arg, src)
		}
		// first positional argument is not a literal
		return "", false
	}
	return "", false
}

func stringValue(node *sitter.Node, src []byte) (string, bool) {
	if node.Type() == "string" {
		return decodeString(node.Content(src))
	}
	var out string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		part := node.NamedChild(i)
		if part.Type() != "string" {
			continue
		}
		s, ok := decodeString(part.Content(src))
		if !ok {
			return "", false
		}
		out += s
	}
	return out, true
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}
