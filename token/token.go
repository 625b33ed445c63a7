// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Copyright (c) 2019 Daniel Kang.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE.tengo file.

package token

import "strconv"

var keywords map[string]Token

// Token represents a token.
type Token int

// List of tokens
const (
	Illegal Token = iota
	EOF
	Comment
	_literalBeg
	Ident
	Number
	String
	_literalEnd
	_operatorBeg
	Add            // +
	Sub            // -
	Mul            // *
	Quo            // /
	Rem            // %
	Exp            // **
	And            // &
	Or             // |
	Xor            // ^
	Shl            // <<
	Shr            // >>
	UShr           // >>>
	AddAssign      // +=
	SubAssign      // -=
	MulAssign      // *=
	QuoAssign      // /=
	RemAssign      // %=
	ExpAssign      // **=
	AndAssign      // &=
	OrAssign       // |=
	XorAssign      // ^=
	ShlAssign      // <<=
	ShrAssign      // >>=
	UShrAssign     // >>>=
	LAnd           // &&
	LOr            // ||
	Nullish        // ??
	Inc            // ++
	Dec            // --
	Equal          // ==
	NotEqual       // !=
	StrictEqual    // ===
	StrictNotEqual // !==
	Less           // <
	Greater        // >
	LessEq         // <=
	GreaterEq      // >=
	Assign         // =
	Not            // !
	BitNot         // ~
	LParen         // (
	LBrack         // [
	LBrace         // {
	Comma          // ,
	Period         // .
	RParen         // )
	RBrack         // ]
	RBrace         // }
	Semicolon      // ;
	Colon          // :
	Question       // ?
	Ellipsis       // ...
	Arrow          // =>
	_operatorEnd
	_keywordBeg
	Break
	Case
	Catch
	Class
	Const
	Continue
	Default
	Delete
	Do
	Else
	Export
	Extends
	False
	Finally
	For
	Function
	If
	Import
	In
	Instanceof
	Let
	New
	Null
	Return
	Super
	Switch
	This
	Throw
	True
	Try
	Typeof
	Var
	Void
	While
	_keywordEnd
)

var tokens = [...]string{
	Illegal:        "ILLEGAL",
	EOF:            "EOF",
	Comment:        "COMMENT",
	Ident:          "IDENT",
	Number:         "NUMBER",
	String:         "STRING",
	Add:            "+",
	Sub:            "-",
	Mul:            "*",
	Quo:            "/",
	Rem:            "%",
	Exp:            "**",
	And:            "&",
	Or:             "|",
	Xor:            "^",
	Shl:            "<<",
	Shr:            ">>",
	UShr:           ">>>",
	AddAssign:      "+=",
	SubAssign:      "-=",
	MulAssign:      "*=",
	QuoAssign:      "/=",
	RemAssign:      "%=",
	ExpAssign:      "**=",
	AndAssign:      "&=",
	OrAssign:       "|=",
	XorAssign:      "^=",
	ShlAssign:      "<<=",
	ShrAssign:      ">>=",
	UShrAssign:     ">>>=",
	LAnd:           "&&",
	LOr:            "||",
	Nullish:        "??",
	Inc:            "++",
	Dec:            "--",
	Equal:          "==",
	NotEqual:       "!=",
	StrictEqual:    "===",
	StrictNotEqual: "!==",
	Less:           "<",
	Greater:        ">",
	LessEq:         "<=",
	GreaterEq:      ">=",
	Assign:         "=",
	Not:            "!",
	BitNot:         "~",
	LParen:         "(",
	LBrack:         "[",
	LBrace:         "{",
	Comma:          ",",
	Period:         ".",
	RParen:         ")",
	RBrack:         "]",
	RBrace:         "}",
	Semicolon:      ";",
	Colon:          ":",
	Question:       "?",
	Ellipsis:       "...",
	Arrow:          "=>",
	Break:          "break",
	Case:           "case",
	Catch:          "catch",
	Class:          "class",
	Const:          "const",
	Continue:       "continue",
	Default:        "default",
	Delete:         "delete",
	Do:             "do",
	Else:           "else",
	Export:         "export",
	Extends:        "extends",
	False:          "false",
	Finally:        "finally",
	For:            "for",
	Function:       "function",
	If:             "if",
	Import:         "import",
	In:             "in",
	Instanceof:     "instanceof",
	Let:            "let",
	New:            "new",
	Null:           "null",
	Return:         "return",
	Super:          "super",
	Switch:         "switch",
	This:           "this",
	Throw:          "throw",
	True:           "true",
	Try:            "try",
	Typeof:         "typeof",
	Var:            "var",
	Void:           "void",
	While:          "while",
}

func (tok Token) String() string {
	s := ""

	if 0 <= tok && tok < Token(len(tokens)) {
		s = tokens[tok]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tok)) + ")"
	}
	return s
}

// LowestPrec represents lowest operator precedence.
const LowestPrec = 0

// Precedence returns the binary precedence of the operator token or
// LowestPrec if it is not a binary operator.
func (tok Token) Precedence() int {
	switch tok {
	case LOr, Nullish:
		return 1
	case LAnd:
		return 2
	case Or:
		return 3
	case Xor:
		return 4
	case And:
		return 5
	case Equal, NotEqual, StrictEqual, StrictNotEqual:
		return 6
	case Less, Greater, LessEq, GreaterEq, Instanceof, In:
		return 7
	case Shl, Shr, UShr:
		return 8
	case Add, Sub:
		return 9
	case Mul, Quo, Rem:
		return 10
	case Exp:
		return 11
	}
	return LowestPrec
}

// IsLiteral returns true if the token is a literal.
func (tok Token) IsLiteral() bool {
	return _literalBeg < tok && tok < _literalEnd
}

// IsOperator returns true if the token is an operator.
func (tok Token) IsOperator() bool {
	return _operatorBeg < tok && tok < _operatorEnd
}

// IsKeyword returns true if the token is a keyword.
func (tok Token) IsKeyword() bool {
	return _keywordBeg < tok && tok < _keywordEnd
}

// IsAssign returns true for '=' and the compound assignment operators.
func (tok Token) IsAssign() bool {
	return tok == Assign || (AddAssign <= tok && tok <= UShrAssign)
}

// BinaryOp returns the binary operator of a compound assignment, or Illegal.
func (tok Token) BinaryOp() Token {
	switch tok {
	case AddAssign:
		return Add
	case SubAssign:
		return Sub
	case MulAssign:
		return Mul
	case QuoAssign:
		return Quo
	case RemAssign:
		return Rem
	case ExpAssign:
		return Exp
	case AndAssign:
		return And
	case OrAssign:
		return Or
	case XorAssign:
		return Xor
	case ShlAssign:
		return Shl
	case ShrAssign:
		return Shr
	case UShrAssign:
		return UShr
	}
	return Illegal
}

// Lookup returns corresponding keyword if ident is a keyword.
func Lookup(ident string) Token {
	if tok, isKeyword := keywords[ident]; isKeyword {
		return tok
	}
	return Ident
}

func init() {
	keywords = make(map[string]Token)
	for i := _keywordBeg + 1; i < _keywordEnd; i++ {
		keywords[tokens[i]] = i
	}
}
