// Package pvl parses a generic nested key = value grammar (identifier =
// scalar | string | sequence | set). The SPICE grammar variant relaxes the
// sequence rule so that whitespace alone separates elements.
package pvl

import (
	"strings"
	"unicode"
)

// Kind is the lexical class of a token
type Kind uint8

const (
	KindEOF     Kind = iota
	KindError        // Malformed input, Text holds the message
	KindWord         // Bare word: identifier, number, date
	KindString       // Quoted literal, quotes removed
	KindComment      // /* ... */
	KindDelim        // One of ( ) { }
	KindAssign       // =
	KindAppend       // +=
	KindComma        // ,
)

// Token is one lexical unit
type Token struct {
	Kind Kind
	Text string
	Line int
}

func (t Token) describe() string {
	if t.Kind == KindEOF {
		return "end of input"
	}
	return t.Text
}

const delimiters = "(){}"

type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

func (l *lexer) peekRune(off int) (rune, bool) {
	if l.pos+off >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos+off], true
}

func (l *lexer) next() Token {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{Kind: KindEOF, Line: l.line}
	}

	r := l.src[l.pos]
	line := l.line

	switch {
	case r == '/':
		if n, ok := l.peekRune(1); ok && n == '*' {
			return l.comment()
		}
	case strings.ContainsRune(delimiters, r):
		l.pos++
		return Token{Kind: KindDelim, Text: string(r), Line: line}
	case r == '=':
		l.pos++
		return Token{Kind: KindAssign, Text: "=", Line: line}
	case r == ',':
		l.pos++
		return Token{Kind: KindComma, Text: ",", Line: line}
	case r == '+':
		if n, ok := l.peekRune(1); ok && n == '=' {
			l.pos += 2
			return Token{Kind: KindAppend, Text: "+=", Line: line}
		}
	case r == '\'' || r == '"':
		return l.quoted(r)
	}

	return l.word()
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
}

func (l *lexer) comment() Token {
	line := l.line
	start := l.pos
	l.pos += 2
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' {
			if n, ok := l.peekRune(1); ok && n == '/' {
				l.pos += 2
				return Token{Kind: KindComment, Text: string(l.src[start:l.pos]), Line: line}
			}
		}
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
	return Token{Kind: KindError, Text: "unterminated comment", Line: line}
}

// quoted reads a literal; a doubled quote inside stands for one quote
func (l *lexer) quoted(q rune) Token {
	line := l.line
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		if r == q {
			if n, ok := l.peekRune(1); ok && n == q {
				sb.WriteRune(q)
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Kind: KindString, Text: sb.String(), Line: line}
		}
		if r == '\n' {
			l.line++
		}
		sb.WriteRune(r)
		l.pos++
	}
	return Token{Kind: KindError, Text: "unterminated quoted string", Line: line}
}

func (l *lexer) word() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		if unicode.IsSpace(r) || strings.ContainsRune(delimiters, r) || r == '=' || r == ',' || r == '\'' || r == '"' {
			break
		}
		if r == '+' {
			if n, ok := l.peekRune(1); ok && n == '=' {
				break
			}
		}
		if r == '/' {
			if n, ok := l.peekRune(1); ok && n == '*' {
				break
			}
		}
		l.pos++
	}
	return Token{Kind: KindWord, Text: string(l.src[start:l.pos]), Line: line}
}

// Tokens is a token stream with push-back, so a parse rule that reads a token
// it cannot use hands it back to the enclosing rule
type Tokens struct {
	lex     *lexer
	pending []Token
}

// NewTokens tokenizes src lazily
func NewTokens(src string) *Tokens {
	return &Tokens{lex: newLexer(src)}
}

// Next returns the next token, pushed-back tokens first
func (t *Tokens) Next() Token {
	if n := len(t.pending); n > 0 {
		tok := t.pending[n-1]
		t.pending = t.pending[:n-1]
		return tok
	}
	return t.lex.next()
}

// Unread pushes tok back onto the stream
func (t *Tokens) Unread(tok Token) {
	t.pending = append(t.pending, tok)
}

// Peek returns the next token without consuming it
func (t *Tokens) Peek() Token {
	tok := t.Next()
	t.Unread(tok)
	return tok
}
