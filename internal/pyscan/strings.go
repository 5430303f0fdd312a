package pyscan

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// decodeString turns a Python string literal, prefix and quotes included,
// into its value. Byte strings are rejected; f-strings keep their
// replacement fields verbatim.
func decodeString(lit string) (string, bool) {
	i := 0
	raw := false
	for i < len(lit) && strings.ContainsRune("rRuUbBfF", rune(lit[i])) {
		switch lit[i] {
		case 'r', 'R':
			raw = true
		case 'b', 'B':
			return "", false
		}
		i++
	}
	body := lit[i:]

	var quote string
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(body, q) {
			quote = q
			break
		}
	}
	if quote == "" || len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}
	inner := body[len(quote) : len(body)-len(quote)]
	if raw {
		return inner, true
	}
	return unescape(inner), true
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case '\n':
			// line continuation
		case '\\', '\'', '"':
			sb.WriteByte(e)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
			if r, ok := hexRune(s[i+1:], width); ok {
				sb.WriteRune(r)
				i += width
				continue
			}
			sb.WriteByte('\\')
			sb.WriteByte(e)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i:j], 8, 32)
			sb.WriteRune(rune(n))
			i = j - 1
		default:
			// unknown escapes keep their backslash
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String()
}

func hexRune(s string, width int) (rune, bool) {
	if len(s) < width {
		return 0, false
	}
	n, err := strconv.ParseUint(s[:width], 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, false
	}
	return rune(n), true
}
