// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package neoone compiles scripts written in a JavaScript subset to NEO
// style VM bytecode and runs them on the reference VM.
package neoone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Hiyho/neo-one/compiler"
	"github.com/Hiyho/neo-one/config"
	"github.com/Hiyho/neo-one/parser"
	"github.com/Hiyho/neo-one/vm"
)

// Options configures compiling and running a script.
type Options struct {
	Compiler     compiler.Options
	MaxSteps     int
	MaxStackSize int
	// Trace receives one line per executed instruction.
	Trace io.Writer
}

// NewOptions returns the options described by c.
func NewOptions(c *config.Config) Options {
	return Options{
		Compiler:     compiler.Options{ResultValue: c.Compiler.ResultValue},
		MaxSteps:     c.VM.MaxSteps,
		MaxStackSize: c.VM.MaxStackSize,
	}
}

// Compile compiles src registered in fileSet as name.
func Compile(fileSet *parser.SourceFileSet, name string, src []byte,
	opts compiler.Options) (*compiler.Result, error) {
	return compiler.CompileSource(fileSet, name, src, opts)
}

// Execute runs bytecode until it halts, faults or ctx is done. The VM is
// returned in both cases to inspect its stacks.
func Execute(ctx context.Context, bytecode []byte, opts Options) (*vm.VM, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	v := vm.NewVM(bytecode).
		SetMaxSteps(opts.MaxSteps).
		SetMaxStackSize(opts.MaxStackSize).
		SetTrace(opts.Trace)
	return v, v.RunContext(ctx)
}

// Run compiles and runs src, returning the value of its last expression
// statement converted by compiler.Inspect.
func Run(ctx context.Context, name string, src []byte, opts Options) (interface{}, error) {
	opts.Compiler.ResultValue = true
	res, err := Compile(opts.Compiler.FileSet, name, src, opts.Compiler)
	if err != nil {
		return nil, err
	}
	v, err := Execute(ctx, res.Bytecode, opts)
	if err != nil {
		return nil, err
	}
	return result(v)
}

func result(v *vm.VM) (interface{}, error) {
	stack := v.Estack()
	if len(stack) != 1 {
		return nil, fmt.Errorf("unexpected stack depth %d", len(stack))
	}
	return compiler.Inspect(stack[0])
}

// ErrIncomplete is returned by Eval.Run for input ending inside a block or
// an expression.
var ErrIncomplete = errors.New("incomplete input")

// Eval compiles and runs scripts within same scope. Scripts run as one
// program: every call replays the accepted scripts and the new one, so
// declarations of earlier scripts stay visible.
// Warning: Eval is not safe to use concurrently.
type Eval struct {
	Opts     Options
	sources  []string
	bytecode []byte
}

// NewEval returns new Eval object.
func NewEval(opts Options) *Eval {
	return &Eval{Opts: opts}
}

// Run compiles and runs script after the accepted ones and returns its
// value. The script is accepted if it runs without error.
func (r *Eval) Run(ctx context.Context, script string) (interface{}, error) {
	src := strings.Join(append(r.sources[:len(r.sources):len(r.sources)], script), "\n")
	opts := r.Opts
	opts.Compiler.ResultValue = true
	res, err := Compile(opts.Compiler.FileSet, "(repl)", []byte(src), opts.Compiler)
	if err != nil {
		var list parser.ErrorList
		if errors.As(err, &list) {
			for _, e := range list {
				if strings.HasSuffix(e.Msg, "found 'EOF'") {
					return nil, fmt.Errorf("%w: %v", ErrIncomplete, err)
				}
			}
		}
		return nil, err
	}
	r.bytecode = res.Bytecode
	v, err := Execute(ctx, res.Bytecode, opts)
	if err != nil {
		return nil, err
	}
	ret, err := result(v)
	if err != nil {
		return nil, err
	}
	r.sources = append(r.sources, script)
	return ret, nil
}

// Bytecode returns the script compiled by the last Run.
func (r *Eval) Bytecode() []byte {
	return r.bytecode
}

// Reset drops the accepted scripts.
func (r *Eval) Reset() {
	r.sources = nil
	r.bytecode = nil
}

// Format returns the REPL form of a value returned by Run.
func Format(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case []interface{}:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = Format(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case compiler.Object:
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			parts = append(parts, k+": "+Format(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(v)
}

func sortedKeys(o compiler.Object) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
