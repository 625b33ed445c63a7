// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package neoone_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/Hiyho/neo-one"
	"github.com/Hiyho/neo-one/compiler"
	"github.com/Hiyho/neo-one/config"
	"github.com/Hiyho/neo-one/vm"
)

func TestRun(t *testing.T) {
	testCases := []struct {
		script string
		result interface{}
	}{
		{`1 + 2`, int64(3)},
		{`let s = "a"; s + "b"`, "ab"},
		{`const o = {k: [1, null]}; o`, compiler.Object{"k": []interface{}{int64(1), nil}}},
		{`let x;`, compiler.Undefined{}},
		{`function f() {} f`, compiler.Function{}},
		{`Symbol("d")`, compiler.Symbol{Description: "d"}},
	}
	for _, tC := range testCases {
		t.Run(tC.script, func(t *testing.T) {
			ret, err := Run(context.Background(), "test.ts", []byte(tC.script),
				NewOptions(config.Default()))
			require.NoError(t, err)
			require.Equal(t, tC.result, ret)
		})
	}
}

func TestRunErrors(t *testing.T) {
	opts := NewOptions(config.Default())

	_, err := Run(context.Background(), "t.ts", []byte(`throw 1;`), opts)
	require.True(t, errors.Is(err, vm.ErrFault), "unexpected error %v", err)

	_, err = Run(context.Background(), "t.ts", []byte(`nope`), opts)
	var diags compiler.Diagnostics
	require.True(t, errors.As(err, &diags))

	opts.MaxSteps = 100
	_, err = Run(context.Background(), "t.ts", []byte(`while (true) {}`), opts)
	require.True(t, errors.Is(err, vm.ErrStepLimit), "unexpected error %v", err)

	opts.MaxSteps = 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = Run(ctx, "t.ts", []byte(`while (true) {}`), opts)
	require.True(t, errors.Is(err, vm.ErrVMAborted), "unexpected error %v", err)
}

func TestExecuteTrace(t *testing.T) {
	res, err := Compile(nil, "t.ts", []byte(`1`), compiler.Options{})
	require.NoError(t, err)
	var buf bytes.Buffer
	v, err := Execute(context.Background(), res.Bytecode, Options{Trace: &buf})
	require.NoError(t, err)
	require.Equal(t, vm.StateHalt, v.State())
	require.Contains(t, buf.String(), "JMP")
}

func TestEval(t *testing.T) {
	ctx := context.Background()
	e := NewEval(NewOptions(config.Default()))

	ret, err := e.Run(ctx, `let a = 10`)
	require.NoError(t, err)
	require.Equal(t, compiler.Undefined{}, ret)

	ret, err = e.Run(ctx, `a * a`)
	require.NoError(t, err)
	require.Equal(t, int64(100), ret)
	require.NotEmpty(t, e.Bytecode())

	ret, err = e.Run(ctx, `function inc(x) { return x + 1; }`)
	require.NoError(t, err)
	require.Equal(t, compiler.Undefined{}, ret)

	ret, err = e.Run(ctx, `inc(a)`)
	require.NoError(t, err)
	require.Equal(t, int64(11), ret)

	// rejected scripts are not replayed
	_, err = e.Run(ctx, `throw 1`)
	require.Error(t, err)
	ret, err = e.Run(ctx, `a`)
	require.NoError(t, err)
	require.Equal(t, int64(10), ret)

	_, err = e.Run(ctx, `if (a) {`)
	require.True(t, errors.Is(err, ErrIncomplete), "unexpected error %v", err)

	e.Reset()
	_, err = e.Run(ctx, `a`)
	require.Error(t, err)
	require.Nil(t, e.Bytecode())
}

func TestFormat(t *testing.T) {
	require.Equal(t, "null", Format(nil))
	require.Equal(t, `"x"`, Format("x"))
	require.Equal(t, "7", Format(int64(7)))
	require.Equal(t, "undefined", Format(compiler.Undefined{}))
	require.Equal(t, `[1, "a", true]`, Format([]interface{}{int64(1), "a", true}))
	require.Equal(t, `{a: 1, b: {c: null}}`,
		Format(compiler.Object{"b": compiler.Object{"c": nil}, "a": int64(1)}))
	require.Equal(t, "Symbol(s)", Format(compiler.Symbol{Description: "s"}))
}
