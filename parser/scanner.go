// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Copyright (c) 2019 Daniel Kang.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE.tengo file.

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/token"
)

// byte order mark, only permitted as very first character
const bom = 0xFEFF

// ScannerErrorHandler is an error handler for the scanner.
type ScannerErrorHandler func(pos SourceFilePos, msg string)

// ScanMode represents a scanner mode.
type ScanMode int

// List of scanner modes.
const (
	ScanComments ScanMode = 1 << iota
)

// Scanner reads the source text. Comments are skipped unless ScanComments
// is set. Line terminators are not tokens; NewlineBefore reports whether
// one preceded the last scanned token, which drives automatic semicolon
// insertion in the parser.
type Scanner struct {
	file          *SourceFile
	src           []byte
	ch            rune
	offset        int
	readOffset    int
	lineOffset    int
	errorHandler  ScannerErrorHandler
	errorCount    int
	mode          ScanMode
	newlineBefore bool
}

// NewScanner creates a Scanner.
func NewScanner(
	file *SourceFile,
	src []byte,
	errorHandler ScannerErrorHandler,
	mode ScanMode,
) *Scanner {
	if file.Size != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)",
			file.Size, len(src)))
	}

	s := &Scanner{
		file:         file,
		src:          src,
		errorHandler: errorHandler,
		ch:           ' ',
		mode:         mode,
	}

	s.next()
	if s.ch == bom {
		s.next() // ignore BOM at file beginning
	}
	return s
}

// ErrorCount returns the number of errors.
func (s *Scanner) ErrorCount() int {
	return s.errorCount
}

// NewlineBefore reports whether a line terminator precedes the last token.
func (s *Scanner) NewlineBefore() bool {
	return s.newlineBefore
}

// Scan returns a token, token literal and its position.
func (s *Scanner) Scan() (tok token.Token, literal string, pos ast.Pos) {
	s.newlineBefore = false
scanAgain:
	s.skipWhitespace()

	pos = s.file.FileSetPos(s.offset)

	switch ch := s.ch; {
	case isIdentStart(ch):
		literal = s.scanIdentifier()
		tok = token.Lookup(literal)
	case isDecimal(ch) || (ch == '.' && isDecimal(rune(s.peek()))):
		tok, literal = token.Number, s.scanNumber()
	default:
		s.next() // always make progress

		switch ch {
		case -1: // EOF
			tok = token.EOF
		case '"', '\'':
			tok = token.String
			literal = s.scanString(ch)
		case '`':
			s.error(s.offset-1, "template literals are not supported")
			tok = token.Illegal
			literal = "`"
		case ':':
			tok = token.Colon
		case '.':
			tok = token.Period
			if s.ch == '.' && s.peek() == '.' {
				s.next()
				s.next()
				tok = token.Ellipsis
			}
		case ',':
			tok = token.Comma
		case '?':
			tok = token.Question
			if s.ch == '?' {
				s.next()
				tok = token.Nullish
			}
		case ';':
			tok = token.Semicolon
			literal = ";"
		case '(':
			tok = token.LParen
		case ')':
			tok = token.RParen
		case '[':
			tok = token.LBrack
		case ']':
			tok = token.RBrack
		case '{':
			tok = token.LBrace
		case '}':
			tok = token.RBrace
		case '+':
			tok = s.switch3(token.Add, token.AddAssign, '+', token.Inc)
		case '-':
			tok = s.switch3(token.Sub, token.SubAssign, '-', token.Dec)
		case '*':
			if s.ch == '*' {
				s.next()
				tok = s.switch2(token.Exp, token.ExpAssign)
			} else {
				tok = s.switch2(token.Mul, token.MulAssign)
			}
		case '/':
			if s.ch == '/' || s.ch == '*' {
				comment := s.scanComment()
				if s.mode&ScanComments == 0 {
					goto scanAgain
				}
				tok = token.Comment
				literal = comment
			} else {
				tok = s.switch2(token.Quo, token.QuoAssign)
			}
		case '%':
			tok = s.switch2(token.Rem, token.RemAssign)
		case '^':
			tok = s.switch2(token.Xor, token.XorAssign)
		case '~':
			tok = token.BitNot
		case '<':
			tok = s.switch4(token.Less, token.LessEq, '<',
				token.Shl, token.ShlAssign)
		case '>':
			tok = s.scanGreater()
		case '=':
			switch s.ch {
			case '>':
				s.next()
				tok = token.Arrow
			case '=':
				s.next()
				tok = s.switch2(token.Equal, token.StrictEqual)
			default:
				tok = token.Assign
			}
		case '!':
			if s.ch == '=' {
				s.next()
				tok = s.switch2(token.NotEqual, token.StrictNotEqual)
			} else {
				tok = token.Not
			}
		case '&':
			tok = s.switch4(token.And, token.AndAssign, '&',
				token.LAnd, token.LAnd)
		case '|':
			tok = s.switch4(token.Or, token.OrAssign, '|',
				token.LOr, token.LOr)
		default:
			// next reports unexpected BOMs - don't repeat
			if ch != bom {
				s.error(s.file.Offset(pos),
					fmt.Sprintf("illegal character %#U", ch))
			}
			tok = token.Illegal
			literal = string(ch)
		}
	}
	if literal == "" {
		literal = tok.String()
	}
	return
}

func (s *Scanner) next() {
	if s.readOffset < len(s.src) {
		s.offset = s.readOffset
		if s.ch == '\n' {
			s.lineOffset = s.offset
			s.file.AddLine(s.offset)
		}
		r, w := rune(s.src[s.readOffset]), 1
		switch {
		case r == 0:
			s.error(s.offset, "illegal character NUL")
		case r >= utf8.RuneSelf:
			// not ASCII
			r, w = utf8.DecodeRune(s.src[s.readOffset:])
			if r == utf8.RuneError && w == 1 {
				s.error(s.offset, "illegal UTF-8 encoding")
			} else if r == bom && s.offset > 0 {
				s.error(s.offset, "illegal byte order mark")
			}
		}
		s.readOffset += w
		s.ch = r
	} else {
		s.offset = len(s.src)
		if s.ch == '\n' {
			s.lineOffset = s.offset
			s.file.AddLine(s.offset)
		}
		s.ch = -1 // eof
	}
}

func (s *Scanner) peek() byte {
	if s.readOffset < len(s.src) {
		return s.src[s.readOffset]
	}
	return 0
}

func (s *Scanner) error(offset int, msg string) {
	if s.errorHandler != nil {
		s.errorHandler(s.file.Position(s.file.FileSetPos(offset)), msg)
	}
	s.errorCount++
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.ch {
		case ' ', '\t', '\r', '\v', '\f', 0xA0, bom:
			s.next()
		case '\n', 0x2028, 0x2029:
			s.newlineBefore = true
			s.next()
		default:
			return
		}
	}
}

func (s *Scanner) scanComment() string {
	// initial '/' already consumed; s.ch == '/' || s.ch == '*'
	offs := s.offset - 1 // position of initial '/'

	if s.ch == '/' {
		//-style comment
		s.next()
		for s.ch != '\n' && s.ch >= 0 {
			s.next()
		}
		return string(s.src[offs:s.offset])
	}

	/*-style comment */
	s.next()
	for s.ch >= 0 {
		ch := s.ch
		if ch == '\n' {
			s.newlineBefore = true
		}
		s.next()
		if ch == '*' && s.ch == '/' {
			s.next()
			return string(s.src[offs:s.offset])
		}
	}
	s.error(offs, "comment not terminated")
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanIdentifier() string {
	offs := s.offset
	for isIdentPart(s.ch) {
		s.next()
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanDigits(valid func(rune) bool) {
	for valid(s.ch) || s.ch == '_' {
		s.next()
	}
}

func (s *Scanner) scanNumber() string {
	offs := s.offset

	if s.ch == '0' {
		switch lower(s.peek()) {
		case 'x':
			s.next()
			s.next()
			s.scanDigits(isHex)
			return s.numberSuffix(offs)
		case 'o':
			s.next()
			s.next()
			s.scanDigits(func(r rune) bool { return '0' <= r && r <= '7' })
			return s.numberSuffix(offs)
		case 'b':
			s.next()
			s.next()
			s.scanDigits(func(r rune) bool { return r == '0' || r == '1' })
			return s.numberSuffix(offs)
		}
	}

	s.scanDigits(isDecimal)
	if s.ch == '.' {
		s.next()
		s.scanDigits(isDecimal)
	}
	if lower(byte(s.ch)) == 'e' && s.ch < utf8.RuneSelf {
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		if !isDecimal(s.ch) {
			s.error(s.offset, "exponent has no digits")
		}
		s.scanDigits(isDecimal)
	}
	return s.numberSuffix(offs)
}

func (s *Scanner) numberSuffix(offs int) string {
	if s.ch == 'n' {
		s.next()
	}
	if isIdentStart(s.ch) {
		s.error(s.offset, "identifier starts immediately after numeric literal")
		for isIdentPart(s.ch) {
			s.next()
		}
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanEscape(quote rune) bool {
	offs := s.offset

	switch s.ch {
	case 'b', 'f', 'n', 'r', 't', 'v', '0', '\\', '\'', '"', '\n':
		s.next()
		return true
	case 'x':
		s.next()
		return s.scanHexDigits(offs, 2)
	case 'u':
		s.next()
		if s.ch == '{' {
			s.next()
			for isHex(s.ch) {
				s.next()
			}
			if s.ch != '}' {
				s.error(offs, "unterminated unicode escape sequence")
				return false
			}
			s.next()
			return true
		}
		return s.scanHexDigits(offs, 4)
	default:
		if s.ch < 0 || s.ch == quote {
			s.error(offs, "escape sequence not terminated")
			return false
		}
		// identity escape
		s.next()
		return true
	}
}

func (s *Scanner) scanHexDigits(offs, n int) bool {
	for ; n > 0; n-- {
		if !isHex(s.ch) {
			msg := "illegal character in escape sequence"
			if s.ch < 0 {
				msg = "escape sequence not terminated"
			}
			s.error(offs, msg)
			return false
		}
		s.next()
	}
	return true
}

func (s *Scanner) scanString(quote rune) string {
	// opening quote already consumed
	offs := s.offset - 1

	for {
		ch := s.ch
		if ch == '\n' || ch < 0 {
			s.error(offs, "string literal not terminated")
			break
		}
		s.next()
		if ch == quote {
			break
		}
		if ch == '\\' {
			s.scanEscape(quote)
		}
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanGreater() token.Token {
	// '>' consumed
	switch s.ch {
	case '=':
		s.next()
		return token.GreaterEq
	case '>':
		s.next()
		switch s.ch {
		case '=':
			s.next()
			return token.ShrAssign
		case '>':
			s.next()
			return s.switch2(token.UShr, token.UShrAssign)
		}
		return token.Shr
	}
	return token.Greater
}

func (s *Scanner) switch2(tok0, tok1 token.Token) token.Token {
	if s.ch == '=' {
		s.next()
		return tok1
	}
	return tok0
}

func (s *Scanner) switch3(
	tok0, tok1 token.Token,
	ch2 rune,
	tok2 token.Token,
) token.Token {
	if s.ch == '=' {
		s.next()
		return tok1
	}
	if s.ch == ch2 {
		s.next()
		return tok2
	}
	return tok0
}

func (s *Scanner) switch4(
	tok0, tok1 token.Token,
	ch2 rune,
	tok2, tok3 token.Token,
) token.Token {
	if s.ch == '=' {
		s.next()
		return tok1
	}
	if s.ch == ch2 {
		s.next()
		if s.ch == '=' && tok3 != tok2 {
			s.next()
			return tok3
		}
		return tok2
	}
	return tok0
}

func isIdentStart(ch rune) bool {
	return 'a' <= lower(byte(ch)) && lower(byte(ch)) <= 'z' && ch < utf8.RuneSelf ||
		ch == '_' || ch == '$' ||
		ch >= utf8.RuneSelf && unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDecimal(ch) ||
		ch >= utf8.RuneSelf && unicode.IsDigit(ch)
}

func lower(ch byte) byte { return ('a' - 'A') | ch }

func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }

func isHex(ch rune) bool {
	return '0' <= ch && ch <= '9' ||
		'a' <= lower(byte(ch)) && lower(byte(ch)) <= 'f' && ch < utf8.RuneSelf
}

// Unquote decodes a single or double quoted string literal.
func Unquote(lit string) (string, error) {
	n := len(lit)
	if n < 2 || lit[0] != lit[n-1] || (lit[0] != '"' && lit[0] != '\'') {
		return "", strconv.ErrSyntax
	}
	body := lit[1 : n-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", strconv.ErrSyntax
		}
		switch c = body[i]; c {
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
		case '0':
			sb.WriteByte(0)
		case '\n':
			// line continuation
		case 'x', 'u':
			var digits string
			switch {
			case c == 'x':
				digits = body[i+1 : min(i+3, len(body))]
				i += len(digits)
			case c == 'u' && i+1 < len(body) && body[i+1] == '{':
				end := strings.IndexByte(body[i:], '}')
				if end < 0 {
					return "", strconv.ErrSyntax
				}
				digits = body[i+2 : i+end]
				i += end
			default:
				digits = body[i+1 : min(i+5, len(body))]
				i += len(digits)
			}
			v, err := strconv.ParseUint(digits, 16, 32)
			if err != nil {
				return "", err
			}
			sb.WriteRune(rune(v))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
