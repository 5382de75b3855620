package kernel

import (
	"regexp"
	"strings"

	"github.com/ppiankov/planets/internal/model"
)

// Op is the assignment operator of a statement
type Op string

const (
	OpAssign Op = "="
	OpAppend Op = "+="
)

// Assignment is one KEY = VALUE statement of a data segment
type Assignment struct {
	Key     string      `json:"key"`
	Op      Op          `json:"op"`
	Value   model.Value `json:"value"`
	Segment int         `json:"segment"` // 0-based index of the originating segment
	Line    int         `json:"line,omitempty"`
}

// assignmentPattern matches the start of a statement: identifier, operator,
// remainder. Identifiers may carry a minus sign (FRAME_-82000_NAME).
var assignmentPattern = regexp.MustCompile(`^([A-Za-z0-9_][A-Za-z0-9_\-]*)\s*(\+?=)\s*(.*)$`)

// ParseSegment turns the lines of one segment into assignments in source
// order. Lines that are neither statements nor continuations are skipped.
func ParseSegment(seg Segment) []Assignment {
	var out []Assignment

	lines := seg.Lines
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		m := assignmentPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		key, op, rest := m[1], Op(m[2]), strings.TrimSpace(m[3])
		startLine := i

		// A vector literal may span lines; keep joining until it balances,
		// including the line that closes it.
		depth := parenDepth(rest)
		for depth > 0 && i+1 < len(lines) {
			i++
			next := strings.TrimSpace(lines[i])
			rest += " " + next
			depth += parenDepth(next)
		}

		a := Assignment{
			Key:     key,
			Op:      op,
			Value:   ParseValue(rest),
			Segment: seg.Index,
		}
		if seg.StartLine > 0 {
			a.Line = seg.StartLine + startLine
		}
		out = append(out, a)
	}

	return out
}

// ParseValue parses a right-hand side. A parenthesised literal becomes a
// Vector of whitespace separated tokens; anything else is a single Scalar
// when numeric and Text otherwise.
func ParseValue(s string) model.Value {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) >= 2 {
		tokens := splitTokens(s[1 : len(s)-1])
		elems := make([]model.Value, 0, len(tokens))
		for _, tok := range tokens {
			elems = append(elems, tok.value())
		}
		return model.Vector(elems...)
	}

	if text, ok := unquote(s); ok {
		return model.Text(text)
	}
	return model.ParseToken(s)
}

// parenDepth is the open-minus-close parenthesis count of s, ignoring
// parentheses inside quoted text
func parenDepth(s string) int {
	depth := 0
	quoted := false
	for _, r := range s {
		switch {
		case r == '\'':
			quoted = !quoted
		case quoted:
		case r == '(':
			depth++
		case r == ')':
			depth--
		}
	}
	return depth
}

type token struct {
	text   string
	quoted bool
}

func (t token) value() model.Value {
	if t.quoted {
		return model.Text(t.text)
	}
	return model.ParseToken(t.text)
}

// splitTokens splits a vector interior on runs of whitespace. Commas are
// accepted as separators too, and 'quoted text' (with '' as an escaped
// quote) is kept whole.
func splitTokens(s string) []token {
	var (
		tokens  []token
		current strings.Builder
		quoted  bool
		inQuote bool
	)

	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, token{text: current.String(), quoted: quoted})
		}
		current.Reset()
		quoted = false
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\'':
			if i+1 < len(runes) && runes[i+1] == '\'' {
				current.WriteRune('\'')
				i++
				continue
			}
			inQuote = false
		case inQuote:
			current.WriteRune(r)
		case r == '\'' && current.Len() == 0:
			inQuote = true
			quoted = true
		case r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// unquote strips a single-quoted literal, undoing '' escapes
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if strings.Count(strings.ReplaceAll(inner, "''", ""), "'") > 0 {
		return "", false
	}
	return strings.ReplaceAll(inner, "''", "'"), true
}
