// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/Hiyho/neo-one/parser"
	"github.com/Hiyho/neo-one/token"
)

type scanResult struct {
	Token   token.Token
	Literal string
	Newline bool
}

func scanAll(t *testing.T, input string, mode ScanMode) ([]scanResult, []string) {
	t.Helper()
	fileSet := NewFileSet()
	file := fileSet.AddFile("test", -1, len(input))

	var errs []string
	s := NewScanner(file, []byte(input), func(_ SourceFilePos, msg string) {
		errs = append(errs, msg)
	}, mode)

	var out []scanResult
	for {
		tok, lit, _ := s.Scan()
		if tok == token.EOF {
			break
		}
		out = append(out, scanResult{tok, lit, s.NewlineBefore()})
	}
	require.Equal(t, len(errs), s.ErrorCount())
	return out, errs
}

func TestScanner(t *testing.T) {
	toks, errs := scanAll(t, "let x = 0x1F;\nx **= 2 // c\n'a\\n'", 0)
	require.Empty(t, errs)
	require.Equal(t, []scanResult{
		{token.Let, "let", false},
		{token.Ident, "x", false},
		{token.Assign, "=", false},
		{token.Number, "0x1F", false},
		{token.Semicolon, ";", false},
		{token.Ident, "x", true},
		{token.ExpAssign, "**=", false},
		{token.Number, "2", false},
		{token.String, `'a\n'`, true},
	}, toks)
}

func TestScannerOperators(t *testing.T) {
	cases := []struct {
		input string
		toks  []token.Token
	}{
		{"a >>>= b", []token.Token{token.Ident, token.UShrAssign, token.Ident}},
		{">> >>> >= >", []token.Token{token.Shr, token.UShr, token.GreaterEq, token.Greater}},
		{"a ?? b ? c : d", []token.Token{token.Ident, token.Nullish, token.Ident,
			token.Question, token.Ident, token.Colon, token.Ident}},
		{"(...a) => a", []token.Token{token.LParen, token.Ellipsis, token.Ident,
			token.RParen, token.Arrow, token.Ident}},
		{"=== !== == != !", []token.Token{token.StrictEqual, token.StrictNotEqual,
			token.Equal, token.NotEqual, token.Not}},
		{"&& || & | ^ ~", []token.Token{token.LAnd, token.LOr, token.And,
			token.Or, token.Xor, token.BitNot}},
		{"++ -- += -= << <<= <=", []token.Token{token.Inc, token.Dec,
			token.AddAssign, token.SubAssign, token.Shl, token.ShlAssign, token.LessEq}},
		{"a.b", []token.Token{token.Ident, token.Period, token.Ident}},
		{".5", []token.Token{token.Number}},
		{"typeof instanceof new", []token.Token{token.Typeof, token.Instanceof, token.New}},
	}
	for _, tc := range cases {
		res, errs := scanAll(t, tc.input, 0)
		require.Empty(t, errs, tc.input)
		var got []token.Token
		for _, r := range res {
			got = append(got, r.Token)
		}
		require.Equal(t, tc.toks, got, tc.input)
	}
}

func TestScannerComments(t *testing.T) {
	res, errs := scanAll(t, "a /* x\ny */ b // z", ScanComments)
	require.Empty(t, errs)
	// a multi-line comment carries the line terminator itself
	require.Equal(t, []scanResult{
		{token.Ident, "a", false},
		{token.Comment, "/* x\ny */", true},
		{token.Ident, "b", false},
		{token.Comment, "// z", false},
	}, res)

	res, _ = scanAll(t, "a /* x\ny */ b", 0)
	require.Len(t, res, 2)
	require.True(t, res[1].Newline)
}

func TestScannerErrors(t *testing.T) {
	_, errs := scanAll(t, "`x`", 0)
	require.Contains(t, errs, "template literals are not supported")

	_, errs = scanAll(t, `"abc`, 0)
	require.Equal(t, []string{"string literal not terminated"}, errs)

	_, errs = scanAll(t, "/* abc", 0)
	require.Equal(t, []string{"comment not terminated"}, errs)

	_, errs = scanAll(t, "1e", 0)
	require.Equal(t, []string{"exponent has no digits"}, errs)

	_, errs = scanAll(t, "12abc", 0)
	require.Equal(t,
		[]string{"identifier starts immediately after numeric literal"}, errs)

	_, errs = scanAll(t, `'\x4'`, 0)
	require.Equal(t, []string{"illegal character in escape sequence"}, errs)
}

func TestUnquote(t *testing.T) {
	cases := map[string]string{
		`""`:            "",
		`'abc'`:         "abc",
		`"a\tb"`:        "a\tb",
		`'it\'s'`:       "it's",
		`"A\x42"`:       "AB",
		`"\u{1F600}"`:   "\U0001F600",
		`"back\\slash"`: `back\slash`,
	}
	for lit, expected := range cases {
		v, err := Unquote(lit)
		require.NoError(t, err, lit)
		require.Equal(t, expected, v, lit)
	}

	for _, lit := range []string{``, `"`, `'a"`, `abc`, `"\x4g"`} {
		_, err := Unquote(lit)
		require.Error(t, err, lit)
	}
}
