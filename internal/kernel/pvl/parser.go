package pvl

import (
	"fmt"
	"strings"

	"github.com/ppiankov/planets/internal/model"
)

// SyntaxError reports a token that does not fit the grammar
type SyntaxError struct {
	Line     int
	Found    string
	Expected string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: expecting %s but found: %q", e.Line, e.Expected, e.Found)
}

func syntaxError(tok Token, expected string) *SyntaxError {
	return &SyntaxError{Line: tok.Line, Found: tok.describe(), Expected: expected}
}

// Grammar configures delimiters and the sequence separator rule
type Grammar struct {
	SequenceDelimiters [2]string
	SetDelimiters      [2]string
	CommaOptional      bool // Elements may be separated by whitespace alone
}

// Standard is the comma separated grammar
func Standard() Grammar {
	return Grammar{
		SequenceDelimiters: [2]string{"(", ")"},
		SetDelimiters:      [2]string{"{", "}"},
	}
}

// SPICE is the text kernel grammar: commas between sequence elements are optional
func SPICE() Grammar {
	g := Standard()
	g.CommaOptional = true
	return g
}

// Statement is one parsed assignment
type Statement struct {
	Key    string
	Append bool // Written with +=
	Value  model.Value
	Line   int
}

// Parser parses text with a fixed grammar. It holds no per-parse state and
// may be shared.
type Parser struct {
	grammar Grammar
}

// NewParser returns a parser for g
func NewParser(g Grammar) *Parser {
	return &Parser{grammar: g}
}

// Grammar returns the parser's grammar
func (p *Parser) Grammar() Grammar {
	return p.grammar
}

// Parse reads statements until end of input or an END statement
func (p *Parser) Parse(text string) ([]Statement, error) {
	ts := NewTokens(text)

	var out []Statement
	for {
		st, ok, err := p.ParseStatement(ts)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, st)
	}
}

// ParseStatement reads one identifier = value statement. ok is false at the
// end of the input.
func (p *Parser) ParseStatement(ts *Tokens) (st Statement, ok bool, err error) {
	p.skipWSC(ts)

	key := ts.Next()
	switch {
	case key.Kind == KindEOF:
		return Statement{}, false, nil
	case key.Kind == KindWord && strings.EqualFold(key.Text, "END"):
		return Statement{}, false, nil
	case key.Kind != KindWord:
		ts.Unread(key)
		return Statement{}, false, syntaxError(key, "an identifier")
	}

	p.skipWSC(ts)
	op := ts.Next()
	if op.Kind != KindAssign && op.Kind != KindAppend {
		ts.Unread(op)
		return Statement{}, false, syntaxError(op, `"=" or "+="`)
	}

	v, err := p.ParseValue(ts)
	if err != nil {
		return Statement{}, false, fmt.Errorf("%s: %w", key.Text, err)
	}

	return Statement{
		Key:    key.Text,
		Append: op.Kind == KindAppend,
		Value:  v,
		Line:   key.Line,
	}, true, nil
}

// ParseValue reads a scalar, quoted string, sequence or set
func (p *Parser) ParseValue(ts *Tokens) (model.Value, error) {
	p.skipWSC(ts)

	tok := ts.Next()
	switch tok.Kind {
	case KindDelim:
		switch tok.Text {
		case p.grammar.SequenceDelimiters[0]:
			ts.Unread(tok)
			elems, err := p.ParseSequence(ts)
			if err != nil {
				return model.Value{}, err
			}
			return model.Vector(elems...), nil
		case p.grammar.SetDelimiters[0]:
			ts.Unread(tok)
			elems, err := p.parseDelimited(ts, p.grammar.SetDelimiters)
			if err != nil {
				return model.Value{}, err
			}
			return model.Vector(elems...), nil
		}
	case KindString:
		return model.Text(tok.Text), nil
	case KindWord:
		return model.ParseToken(tok.Text), nil
	}

	ts.Unread(tok)
	return model.Value{}, syntaxError(tok, "a value")
}

// ParseSequence reads a sequence literal. When the grammar makes commas
// optional, elements may be separated by whitespace (and comments) alone.
// Nested sequences are parsed recursively through ParseValue.
func (p *Parser) ParseSequence(ts *Tokens) ([]model.Value, error) {
	return p.parseDelimited(ts, p.grammar.SequenceDelimiters)
}

func (p *Parser) parseDelimited(ts *Tokens, delims [2]string) ([]model.Value, error) {
	open, closing := delims[0], delims[1]

	t := ts.Next()
	if t.Kind != KindDelim || t.Text != open {
		ts.Unread(t)
		return nil, syntaxError(t, fmt.Sprintf("a begin delimiter %q", open))
	}

	elems := make([]model.Value, 0)
	if p.wscUntil(closing, ts) {
		return elems, nil
	}

	first, err := p.ParseValue(ts)
	if err != nil {
		return nil, err
	}
	elems = append(elems, first)

	for {
		if p.wscUntil(closing, ts) {
			return elems, nil
		}

		sep := ts.Next()
		switch {
		case sep.Kind == KindComma:
			if p.grammar.CommaOptional && p.wscUntil(closing, ts) {
				return elems, nil
			}
		case p.grammar.CommaOptional:
			ts.Unread(sep)
		default:
			ts.Unread(sep)
			return nil, syntaxError(sep, fmt.Sprintf(`"," or end delimiter %q`, closing))
		}

		if next := ts.Peek(); next.Kind == KindEOF || next.Kind == KindError {
			return nil, syntaxError(next, fmt.Sprintf("end delimiter %q", closing))
		}

		v, err := p.ParseValue(ts)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
}

// skipWSC consumes comments. Whitespace never reaches the token stream.
func (p *Parser) skipWSC(ts *Tokens) {
	for {
		tok := ts.Next()
		if tok.Kind != KindComment {
			ts.Unread(tok)
			return
		}
	}
}

// wscUntil consumes comments and then the delimiter, reporting whether the
// delimiter was found. A different token is left on the stream.
func (p *Parser) wscUntil(delim string, ts *Tokens) bool {
	p.skipWSC(ts)
	tok := ts.Next()
	if tok.Kind == KindDelim && tok.Text == delim {
		return true
	}
	ts.Unread(tok)
	return false
}
