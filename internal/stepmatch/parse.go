package stepmatch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field types understood by parse format specs. Anything else, including
// types registered in Python with register_type, matches like an untyped field.
var fieldTypes = map[string]string{
	"d": `[-+ ]?(?:0[bB][01]+|0[oO][0-7]+|0[xX][0-9a-fA-F]+|\d+)`,
	"n": `[-+ ]?\d{1,3}(?:[,.]\d{3})*`,
	"f": `[-+ ]?\d*\.\d+`,
	"F": `[-+ ]?\d*\.\d+`,
	"e": `[-+ ]?\d*\.\d+e[-+]?\d+|nan|[-+]?inf`,
	"g": `[-+ ]?\d+(?:\.\d+)?(?:e[-+]?\d+)?|nan|[-+]?inf`,
	"w": `[\p{L}\p{N}_]+`,
	"W": `[^\p{L}\p{N}_]+`,
	"s": `\s+`,
	"S": `\S+`,
	"l": `\p{L}+`,
	"x": `(?:0[xX])?[0-9a-fA-F]+`,
	"o": `(?:0[oO])?[0-7]+`,
	"b": `(?:0[bB])?[01]+`,
	"%": `\d+(?:\.\d+)?%`,
}

const untypedField = `.+?`

// Format spec prefix: [[fill]align][sign][0][width][,][.precision]
var specPrefix = regexp.MustCompile(`^(?:.?[<>=^])?[-+ ]?0?\d*,?(?:\.\d+)?`)

type parseMatcher struct {
	pattern  string
	re       *regexp.Regexp
	repeats  [][]int   // group indexes sharing one field name
	segments []segment // pattern pieces, for repeated-field backtracking
}

// segment is either literal text or a field matched as a whole.
type segment struct {
	literal string
	field   *regexp.Regexp
	name    string
}

func compileParse(pattern string) (*parseMatcher, error) {
	var sb strings.Builder
	sb.WriteString(`(?is)^`)

	groups := map[string][]int{}
	var order []string
	var segments []segment
	fields := map[string]*regexp.Regexp{}
	group := 0

	addLiteral := func(text string) {
		sb.WriteString(regexp.QuoteMeta(text))
		if n := len(segments); n > 0 && segments[n-1].field == nil {
			segments[n-1].literal += text
			return
		}
		segments = append(segments, segment{literal: text})
	}

	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '{' && strings.HasPrefix(pattern[i:], "{{"):
			addLiteral("{")
			i += 2
		case c == '}' && strings.HasPrefix(pattern[i:], "}}"):
			addLiteral("}")
			i += 2
		case c == '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed field in step pattern %q", pattern)
			}
			name, spec, _ := strings.Cut(pattern[i+1:i+end], ":")
			expr := fieldRegex(spec)
			group++
			sb.WriteString("(")
			sb.WriteString(expr)
			sb.WriteString(")")
			if fields[expr] == nil {
				fields[expr] = regexp.MustCompile(`(?is)^(?:` + expr + `)$`)
			}
			segments = append(segments, segment{field: fields[expr], name: name})
			if name != "" {
				if _, seen := groups[name]; !seen {
					order = append(order, name)
				}
				groups[name] = append(groups[name], group)
			}
			i += end + 1
		default:
			j := i + 1
			for j < len(pattern) && pattern[j] != '{' && pattern[j] != '}' {
				j++
			}
			addLiteral(pattern[i:j])
			i = j
		}
	}
	sb.WriteString(`$`)

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("compiling step pattern %q: %w", pattern, err)
	}

	m := &parseMatcher{pattern: pattern, re: re, segments: segments}
	for _, name := range order {
		if idx := groups[name]; len(idx) > 1 {
			m.repeats = append(m.repeats, idx)
		}
	}
	return m, nil
}

func fieldRegex(spec string) string {
	typ := specPrefix.ReplaceAllString(spec, "")
	if r, ok := fieldTypes[typ]; ok {
		return r
	}
	return untypedField
}

func (m *parseMatcher) Match(text string) bool {
	sub := m.re.FindStringSubmatch(text)
	if sub == nil {
		return false
	}
	if m.repeatsEqual(sub) {
		return true
	}
	// The regexp settled on one split; another may give equal repeats.
	return matchSegments(text, m.segments, map[string]string{})
}

func (m *parseMatcher) repeatsEqual(sub []string) bool {
	for _, idx := range m.repeats {
		for _, g := range idx[1:] {
			if !strings.EqualFold(sub[idx[0]], sub[g]) {
				return false
			}
		}
	}
	return true
}

// matchSegments reports whether text is exactly segs, with every repeat of a
// named field equal to its first capture.
func matchSegments(text string, segs []segment, bound map[string]string) bool {
	if len(segs) == 0 {
		return text == ""
	}
	seg, rest := segs[0], segs[1:]
	if seg.field == nil {
		n := len(seg.literal)
		return len(text) >= n && strings.EqualFold(text[:n], seg.literal) && matchSegments(text[n:], rest, bound)
	}
	if v, ok := bound[seg.name]; ok && seg.name != "" {
		n := len(v)
		return len(text) >= n && strings.EqualFold(text[:n], v) && matchSegments(text[n:], rest, bound)
	}
	for end := 1; end <= len(text); end++ {
		if end < len(text) && !utf8.RuneStart(text[end]) {
			continue
		}
		value := text[:end]
		if !seg.field.MatchString(value) {
			continue
		}
		if seg.name != "" {
			bound[seg.name] = value
		}
		if matchSegments(text[end:], rest, bound) {
			return true
		}
		delete(bound, seg.name)
	}
	return false
}

func (m *parseMatcher) Pattern() string { return m.pattern }
