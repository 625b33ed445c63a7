// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

//go:build !js
// +build !js

package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hiyho/neo-one/config"
	"github.com/Hiyho/neo-one/encoder"
)

func TestREPL(t *testing.T) {
	initSuggestions()
	stdout := bytes.NewBuffer(nil)
	r := newREPL(context.Background(), stdout, options(config.Default(), nil))

	require.NoError(t, r.execute("test"))
	require.Contains(t, stdout.String(), "UNKNOWN_SYMBOL")
	stdout.Reset()

	require.NoError(t, r.execute("let test = 1"))
	require.Equal(t, "\n⇦   undefined\n", stdout.String())
	stdout.Reset()

	require.NoError(t, r.execute("test + 1"))
	require.Equal(t, "\n⇦   2\n", stdout.String())
	stdout.Reset()

	require.NoError(t, r.execute(".return"))
	require.Equal(t, "2\n", stdout.String())
	stdout.Reset()

	require.NoError(t, r.execute(".return+"))
	require.True(t, strings.HasPrefix(stdout.String(), "GoType:int64,"))
	stdout.Reset()

	require.NoError(t, r.execute(".bytecode"))
	require.Contains(t, stdout.String(), "JMP")
	stdout.Reset()

	require.NoError(t, r.execute(".keywords"))
	require.Contains(t, stdout.String(), "class\n")
	stdout.Reset()

	require.NoError(t, r.execute(".commands"))
	require.Contains(t, stdout.String(), ".exit")
	stdout.Reset()

	// continued explicitly and by an open block
	require.NoError(t, r.execute(`function twice(x) {\`))
	require.True(t, r.isMultiline)
	require.Equal(t, promptPrefix2, r.prefix())
	require.NoError(t, r.execute("return x * 2;"))
	require.True(t, r.isMultiline)
	require.NoError(t, r.execute("}"))
	require.False(t, r.isMultiline)
	require.Equal(t, promptPrefix, r.prefix())
	stdout.Reset()
	require.NoError(t, r.execute("twice(test)"))
	require.Equal(t, "\n⇦   2\n", stdout.String())

	require.Equal(t, errReset, r.execute(".reset"))
	require.Equal(t, errExit, r.execute(".exit"))
}

func TestComplete(t *testing.T) {
	initSuggestions()
	got := complete(".ret")
	require.Equal(t, []string{".return", ".return+"}, got)
	require.Contains(t, complete("whi"), "while")
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(script, []byte("1"), 0o644))

	newFlagSet := func() *flag.FlagSet {
		fs := flag.NewFlagSet("neoc", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		return fs
	}

	f, err := parseFlags(newFlagSet(), []string{"-v", "2", "-trace", "vm", "compile", script})
	require.NoError(t, err)
	require.Equal(t, "compile", f.command)
	require.Equal(t, script, f.filePath)
	require.True(t, f.verbositySet)

	f, err = parseFlags(newFlagSet(), []string{script})
	require.NoError(t, err)
	require.Equal(t, "run", f.command)
	require.False(t, f.verbositySet)

	f, err = parseFlags(newFlagSet(), nil)
	require.NoError(t, err)
	require.Equal(t, "", f.filePath)

	_, err = parseFlags(newFlagSet(), []string{"disasm"})
	require.Error(t, err)
	_, err = parseFlags(newFlagSet(), []string{"a", "b"})
	require.Error(t, err)
	_, err = parseFlags(newFlagSet(), []string{filepath.Join(dir, "missing.ts")})
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("[log]\nverbosity = 1\n"), 0o644))

	cfg, err := loadConfig(flags{configPath: path, trace: "compiler,vm", output: "x.neoc"})
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Log.Verbosity)
	require.True(t, cfg.Compiler.Trace)
	require.True(t, cfg.VM.Trace)
	require.Equal(t, "x.neoc", cfg.Compiler.Output)

	cfg, err = loadConfig(flags{configPath: path, verbosity: 0, verbositySet: true})
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Log.Verbosity)
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.ts")
	src := "function sq(x) {\n\treturn x * x;\n}\nsq(12)\n"
	require.NoError(t, os.WriteFile(script, []byte(src), 0o644))
	cfg := config.Default()
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runFile(ctx, flags{command: "run", filePath: script}, cfg, &out))
	require.Equal(t, "144\n", out.String())

	out.Reset()
	require.NoError(t, runFile(ctx, flags{command: "disasm", filePath: script}, cfg, &out))
	require.Contains(t, out.String(), "main.ts:2:\n")
	require.Contains(t, out.String(), "MUL")

	artifact := filepath.Join(dir, "main.neoc")
	cfg.Compiler.Output = artifact
	out.Reset()
	require.NoError(t, runFile(ctx, flags{command: "compile", filePath: script}, cfg, &out))
	require.True(t, strings.HasPrefix(out.String(), artifact+" "))

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	require.True(t, isArtifact(data))
	a, err := encoder.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "main.ts", a.Source)

	out.Reset()
	require.NoError(t, runFile(ctx, flags{command: "run", filePath: artifact}, cfg, &out))
	require.Equal(t, "144\n", out.String())

	failing := filepath.Join(dir, "fail.ts")
	require.NoError(t, os.WriteFile(failing, []byte("let a = 1;\nthrow a;\n"), 0o644))
	err = runFile(ctx, flags{command: "run", filePath: failing}, cfg, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "fail.ts:")
}
