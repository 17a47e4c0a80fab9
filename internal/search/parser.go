package search

import "fmt"

// exprKind distinguishes AST node shapes.
type exprKind int

const (
	exprAnd exprKind = iota
	exprOr
	exprCompare
	exprExists
)

// expr is one node of a parsed SearchCriteria tree. Compare/Exists nodes are
// leaves; And/Or nodes combine two children.
type expr struct {
	kind exprKind

	// leaf fields
	property string
	op       string // "=", "!=", "<", "<=", ">", ">=", "contains", "derivedfrom"
	value    string
	existsOK bool // for exprExists: true/false literal

	// branch fields
	left, right *expr
}

// Parse parses a SearchCriteria string into an expr tree. An empty or
// all-whitespace input (the "match everything" case some clients send) is
// not valid per the grammar and must be special-cased by the caller before
// calling Parse.
func Parse(input string) (*expr, error) {
	p := &parser{lex: newLexer(input)}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	tok, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: trailing input after expression", ErrSyntax)
	}
	return e, nil
}

type parser struct {
	lex *lexer
}

func (p *parser) parseOr() (*expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.lookahead()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokIdent || tok.text != "or" {
			return left, nil
		}
		p.lex.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &expr{kind: exprOr, left: left, right: right}
	}
}

func (p *parser) parseAnd() (*expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.lookahead()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokIdent || tok.text != "and" {
			return left, nil
		}
		p.lex.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &expr{kind: exprAnd, left: left, right: right}
	}
}

func (p *parser) parseTerm() (*expr, error) {
	tok, err := p.lex.lookahead()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokLParen {
		p.lex.next()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ')'", ErrSyntax)
		}
		return e, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (*expr, error) {
	propTok, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if propTok.kind != tokIdent {
		return nil, fmt.Errorf("%w: expected property name", ErrSyntax)
	}

	opTok, err := p.lex.next()
	if err != nil {
		return nil, err
	}

	switch opTok.kind {
	case tokOp:
		valTok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if valTok.kind != tokString {
			return nil, fmt.Errorf("%w: expected quoted literal after operator", ErrSyntax)
		}
		return &expr{kind: exprCompare, property: propTok.text, op: opTok.text, value: valTok.text}, nil

	case tokIdent:
		switch opTok.text {
		case "contains", "derivedfrom":
			valTok, err := p.lex.next()
			if err != nil {
				return nil, err
			}
			if valTok.kind != tokString {
				return nil, fmt.Errorf("%w: expected quoted literal after %q", ErrSyntax, opTok.text)
			}
			return &expr{kind: exprCompare, property: propTok.text, op: opTok.text, value: valTok.text}, nil

		case "exists":
			boolTok, err := p.lex.next()
			if err != nil {
				return nil, err
			}
			if boolTok.kind != tokIdent || (boolTok.text != "true" && boolTok.text != "false") {
				return nil, fmt.Errorf("%w: expected true/false after exists", ErrSyntax)
			}
			return &expr{kind: exprExists, property: propTok.text, existsOK: boolTok.text == "true"}, nil
		}
	}

	return nil, fmt.Errorf("%w: expected operator after property %q", ErrSyntax, propTok.text)
}
