// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `
[compiler]
result-value = false
trace = true
output = "out.neoc"

[vm]
max-steps = 1000
timeout = "2s"

[log]
verbosity = 2
file = "neoc.log"
`
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, c.Path)
	require.False(t, c.Compiler.ResultValue)
	require.True(t, c.Compiler.Trace)
	require.Equal(t, "out.neoc", c.Compiler.Output)
	require.Equal(t, 1000, c.VM.MaxSteps)
	require.Equal(t, 2*time.Second, c.VM.Timeout)
	// not in the file
	require.Equal(t, Default().VM.MaxStackSize, c.VM.MaxStackSize)
	require.Equal(t, 2, c.Log.Verbosity)
	require.Equal(t, "neoc.log", c.Log.File)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name, data, msg string
	}{
		{"unknown key", "[vm]\nmax-step = 1", `unknown key "vm.max-step"`},
		{"bad verbosity", "[log]\nverbosity = 5", "log.verbosity 5 out of range"},
		{"negative stack", "[vm]\nmax-stack-size = -1", "vm.max-stack-size"},
		{"syntax", "[vm\n", ""},
	}
	for _, tC := range testCases {
		t.Run(tC.name, func(t *testing.T) {
			_, err := Parse([]byte(tC.data))
			require.Error(t, err)
			require.Contains(t, err.Error(), tC.msg)
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	c, err := FindAndLoad(nested)
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	path := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[vm]\nmax-steps = 7\n"), 0o644))
	c, err = FindAndLoad(nested)
	require.NoError(t, err)
	require.Equal(t, 7, c.VM.MaxSteps)
	require.Equal(t, path, c.Path)
	require.True(t, c.Compiler.ResultValue)
}
