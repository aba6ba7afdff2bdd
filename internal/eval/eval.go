// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package eval implements the safe arithmetic evaluator behind the
// calculate tool. Validate is a security boundary: anything outside the
// numeric character allow-set is rejected before Evaluate sees it, so the
// evaluator never resolves identifiers or calls functions.
package eval

import (
	"fmt"
	"strconv"
	"strings"
)

// allowedChars is the full set of characters a calculator expression may
// contain. Everything else (letters, underscores, semicolons, quotes) is
// rejected outright.
const allowedChars = "0123456789+-*/.() "

// Validate reports whether the expression contains only allowed characters.
// It must be called before Evaluate; evaluation is skipped entirely when it
// returns false.
func Validate(expr string) bool {
	for _, r := range expr {
		if !strings.ContainsRune(allowedChars, r) {
			return false
		}
	}
	return true
}

// EvalError describes a failed evaluation of an otherwise well-formed
// (validated) expression.
type EvalError struct {
	Reason string
}

func (e *EvalError) Error() string {
	return e.Reason
}

func evalErrorf(format string, args ...interface{}) *EvalError {
	return &EvalError{Reason: fmt.Sprintf(format, args...)}
}

// Evaluate computes the value of a validated arithmetic expression using
// standard precedence and associativity. Supported: decimal numerals, the
// four basic operators, unary plus/minus and parentheses. It fails on
// division by zero, unbalanced parentheses, empty input and trailing
// operators.
func Evaluate(expr string) (float64, error) {
	p := &parser{input: expr}
	if p.peek() == tokenEOF {
		return 0, evalErrorf("empty expression")
	}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok != tokenEOF {
		return 0, evalErrorf("unexpected %q in expression", tok)
	}
	return value, nil
}

const tokenEOF = ""

// parser is a small recursive-descent parser over a validated expression.
// Grammar:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | ("+" | "-") factor | "(" expr ")"
type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case "+":
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case "-":
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case "*":
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left *= right
		case "/":
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, evalErrorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	switch tok := p.peek(); tok {
	case tokenEOF:
		return 0, evalErrorf("expression ends with an operator")
	case "+":
		p.next()
		return p.parseFactor()
	case "-":
		p.next()
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case "(":
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ")" {
			return 0, evalErrorf("unbalanced parentheses")
		}
		p.next()
		return value, nil
	case ")":
		return 0, evalErrorf("unbalanced parentheses")
	default:
		p.next()
		value, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, evalErrorf("malformed number %q", tok)
		}
		return value, nil
	}
}

// peek returns the next token without consuming it.
func (p *parser) peek() string {
	pos := p.pos
	tok, _ := scanToken(p.input, pos)
	return tok
}

// next consumes and returns the next token.
func (p *parser) next() string {
	tok, rest := scanToken(p.input, p.pos)
	p.pos = rest
	return tok
}

// scanToken reads one token starting at pos, skipping spaces. A token is a
// single operator or parenthesis, or a maximal run of digits and dots.
func scanToken(input string, pos int) (string, int) {
	for pos < len(input) && input[pos] == ' ' {
		pos++
	}
	if pos >= len(input) {
		return tokenEOF, pos
	}
	switch c := input[pos]; c {
	case '+', '-', '*', '/', '(', ')':
		return string(c), pos + 1
	default:
		start := pos
		for pos < len(input) && (isDigit(input[pos]) || input[pos] == '.') {
			pos++
		}
		if pos == start {
			// Not part of the arithmetic grammar; surface it as a
			// one-character token so the parser reports it.
			return string(c), pos + 1
		}
		return input[start:pos], pos
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatResult renders an evaluation result the way the calculate tool
// reports it: integers without a decimal point, everything else with the
// shortest exact representation.
func FormatResult(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
