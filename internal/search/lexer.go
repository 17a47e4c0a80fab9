// Package search translates a UPnP ContentDirectory SearchCriteria string
// into a catalog.Predicate the store can execute, per the grammar subset:
// properties (@id, @parentID, @refID, dc:title, dc:date, dc:creator,
// upnp:class, upnp:album, upnp:artist, upnp:actor, upnp:genre), comparison
// and substring operators, and/or logic with parenthesized grouping, and
// double-quoted string literals carrying XML-entity-encoded quotes.
package search

import (
	"fmt"
	"strings"
	"text/scanner"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokLParen
	tokRParen
	tokOp // = != < <= > >=
)

type token struct {
	kind tokenKind
	text string
}

// lexer wraps text/scanner.Scanner, configured so identifiers absorb the
// property-name punctuation UPnP uses (@id, dc:title, upnp:class) as single
// tokens, and intercepts quoted literals itself: the grammar's strings use
// XML-entity escapes for embedded quotes, not Go string-literal escapes, so
// scanner.ScanStrings would mis-tokenize them.
type lexer struct {
	s    scanner.Scanner
	peek *token
}

func newLexer(input string) *lexer {
	l := &lexer{}
	l.s.Init(strings.NewReader(input))
	l.s.Mode = scanner.ScanIdents
	l.s.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '
	l.s.IsIdentRune = func(ch rune, i int) bool {
		switch {
		case ch == '@' && i == 0:
			return true
		case ch == ':' || ch == '.':
			return true
		case ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z':
			return true
		case ch >= '0' && ch <= '9' && i > 0:
			return true
		case ch == '_':
			return true
		}
		return false
	}
	return l
}

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&apos;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

// next returns the next token, consuming it.
func (l *lexer) next() (token, error) {
	if l.peek != nil {
		t := *l.peek
		l.peek = nil
		return t, nil
	}
	return l.scan()
}

// lookahead returns the next token without consuming it.
func (l *lexer) lookahead() (token, error) {
	if l.peek == nil {
		t, err := l.scan()
		if err != nil {
			return token{}, err
		}
		l.peek = &t
	}
	return *l.peek, nil
}

func (l *lexer) scan() (token, error) {
	r := l.s.Scan()
	switch r {
	case scanner.EOF:
		return token{kind: tokEOF}, nil
	case scanner.Ident:
		return token{kind: tokIdent, text: l.s.TokenText()}, nil
	case '(':
		return token{kind: tokLParen}, nil
	case ')':
		return token{kind: tokRParen}, nil
	case '"':
		return l.scanString()
	case '=':
		return token{kind: tokOp, text: "="}, nil
	case '!':
		if l.s.Peek() == '=' {
			l.s.Next()
			return token{kind: tokOp, text: "!="}, nil
		}
		return token{}, fmt.Errorf("search: unexpected %q", "!")
	case '<':
		if l.s.Peek() == '=' {
			l.s.Next()
			return token{kind: tokOp, text: "<="}, nil
		}
		return token{kind: tokOp, text: "<"}, nil
	case '>':
		if l.s.Peek() == '=' {
			l.s.Next()
			return token{kind: tokOp, text: ">="}, nil
		}
		return token{kind: tokOp, text: ">"}, nil
	default:
		return token{}, fmt.Errorf("search: unexpected character %q", r)
	}
}

// scanString consumes runes after an opening '"' up to the matching closing
// '"', decoding the four entity sequences the grammar uses to embed quotes
// and angle brackets inside a literal.
func (l *lexer) scanString() (token, error) {
	var b strings.Builder
	for {
		r := l.s.Next()
		if r == scanner.EOF {
			return token{}, fmt.Errorf("%w: unterminated string literal", ErrSyntax)
		}
		if r == '"' {
			return token{kind: tokString, text: entityReplacer.Replace(b.String())}, nil
		}
		b.WriteRune(r)
	}
}
